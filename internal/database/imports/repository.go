package imports

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/entities"
)

// Repository tracks import sessions.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new import sessions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateSession records the start of an import run.
func (r *Repository) CreateSession(userID uint, source entities.ImportSource) (*entities.ImportSession, error) {
	session := &entities.ImportSession{
		UserID:    userID,
		Source:    source,
		Status:    entities.ImportStatusRunning,
		StartedAt: time.Now(),
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteSession marks a session as finished with its final counts.
func (r *Repository) CompleteSession(session *entities.ImportSession) error {
	now := time.Now()
	session.Status = entities.ImportStatusCompleted
	session.CompletedAt = &now
	return r.db.Save(session).Error
}

// FailSession marks a session as failed and records the error.
func (r *Repository) FailSession(session *entities.ImportSession, cause error) error {
	now := time.Now()
	session.Status = entities.ImportStatusFailed
	session.CompletedAt = &now
	if cause != nil {
		session.Errors = cause.Error()
	}
	return r.db.Save(session).Error
}

// GetSessionByID retrieves an import session by ID.
func (r *Repository) GetSessionByID(id uint) (*entities.ImportSession, error) {
	var session entities.ImportSession
	err := r.db.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSessionsForUser retrieves a user's import history, most recent
// first.
func (r *Repository) GetSessionsForUser(userID uint, limit int) ([]entities.ImportSession, error) {
	if limit <= 0 {
		limit = 50
	}
	var sessions []entities.ImportSession
	err := r.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}
