package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Link check settings
	SettingKeyLinkCheckEnabled     = "link_check_enabled"
	SettingKeyLinkCheckSchedule    = "link_check_schedule"
	SettingKeyLinkCheckLastAt      = "link_check_last_at"
	SettingKeyLinkCheckLastStatus  = "link_check_last_status"
	SettingKeyLinkCheckLastMessage = "link_check_last_message"
)
