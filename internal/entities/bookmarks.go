package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleEditor UserRole = "editor"
	UserRoleViewer UserRole = "viewer"
)

type ImportStatus string

const (
	ImportStatusPending   ImportStatus = "pending"
	ImportStatusRunning   ImportStatus = "running"
	ImportStatusCompleted ImportStatus = "completed"
	ImportStatusFailed    ImportStatus = "failed"
)

// ImportSource identifies how the bookmark payload reached the importer.
type ImportSource string

const (
	ImportSourceBrowserHTML ImportSource = "browser_html" // raw export file, parsed server-side
	ImportSourceJSONNodes   ImportSource = "json_nodes"   // client-parsed node forest
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	Role         UserRole  `gorm:"size:20;default:'editor'" json:"role"`

	// API token (hash only, plaintext shown to user once)
	TokenHash      string     `gorm:"index;size:64" json:"-"`
	TokenCreatedAt *time.Time `json:"-"`

	// Login rate limiting
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

type Bookmark struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"index" json:"user_id"`
	CollectionID *uint  `gorm:"index" json:"collection_id,omitempty"`
	Title        string `gorm:"size:512" json:"title"`
	URL          string `gorm:"index;size:2048" json:"url"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	Icon         string `gorm:"size:2048" json:"icon,omitempty"`
	Image        string `gorm:"size:2048" json:"image,omitempty"`

	// Link health, maintained by the check_links task queue
	IsDead        bool       `gorm:"default:false" json:"is_dead"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`

	User       User        `gorm:"foreignKey:UserID" json:"-"`
	Collection *Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
	Tags       []Tag       `gorm:"many2many:bookmark_tags;" json:"tags,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Collection groups bookmarks. There is deliberately no parent pointer:
// import collapses nested folders onto a flat collection set.
type Collection struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index" json:"user_id"`
	Name      string     `gorm:"index;size:256" json:"name"`
	Color     string     `gorm:"size:10" json:"color,omitempty"` // Hex color code
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Bookmarks []Bookmark `gorm:"foreignKey:CollectionID" json:"bookmarks,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Tag struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index" json:"user_id"`
	Name      string     `gorm:"index;size:100" json:"name"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Bookmarks []Bookmark `gorm:"many2many:bookmark_tags;" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

// ImportSession records one import run for a user.
type ImportSession struct {
	ID                 uint         `gorm:"primaryKey" json:"id"`
	UserID             uint         `gorm:"index" json:"user_id"`
	Source             ImportSource `gorm:"size:20" json:"source"`
	Status             ImportStatus `gorm:"size:20;default:'pending'" json:"status"`
	NodesProcessed     int          `json:"nodes_processed"`
	BookmarksCreated   int          `json:"bookmarks_created"`
	CollectionsCreated int          `json:"collections_created"`
	Errors             string       `gorm:"type:text" json:"errors,omitempty"`
	StartedAt          time.Time    `json:"started_at"`
	CompletedAt        *time.Time   `json:"completed_at,omitempty"`
	User               User         `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (Bookmark) TableName() string {
	return "bookmarks"
}

func (Collection) TableName() string {
	return "collections"
}

func (Tag) TableName() string {
	return "tags"
}

func (ImportSession) TableName() string {
	return "import_sessions"
}
