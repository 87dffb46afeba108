// Package bookmarks provides database operations for bookmark management.
//
// This package implements the BookmarkStore interface defined in
// internal/http/stores.go.
//
// # Usage
//
//	repo := bookmarks.NewRepository(db)
//	bookmark, err := repo.GetBookmarkByID(123)
package bookmarks

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/entities"
)

// ListOptions narrows down a bookmark listing. Zero values mean
// "no filter".
type ListOptions struct {
	CollectionID *uint
	TagID        uint
	Query        string
	Dead         *bool
	Limit        int
	Offset       int
}

// Repository handles all bookmark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForUser retrieves a filtered, paginated page of a user's
// bookmarks together with the total match count.
func (r *Repository) ListForUser(userID uint, opts ListOptions) ([]entities.Bookmark, int64, error) {
	query := r.db.Model(&entities.Bookmark{}).Where("bookmarks.user_id = ?", userID)

	if opts.CollectionID != nil {
		query = query.Where("bookmarks.collection_id = ?", *opts.CollectionID)
	}
	if opts.TagID > 0 {
		query = query.Joins("JOIN bookmark_tags ON bookmark_tags.bookmark_id = bookmarks.id").
			Where("bookmark_tags.tag_id = ?", opts.TagID)
	}
	if opts.Query != "" {
		pattern := "%" + opts.Query + "%"
		query = query.Where(
			"LOWER(bookmarks.title) LIKE LOWER(?) OR LOWER(bookmarks.url) LIKE LOWER(?) OR LOWER(bookmarks.description) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}
	if opts.Dead != nil {
		query = query.Where("bookmarks.is_dead = ?", *opts.Dead)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var bookmarks []entities.Bookmark
	err := query.Preload("Tags").Preload("Collection").
		Order("bookmarks.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&bookmarks).Error
	return bookmarks, total, err
}

// GetBookmarkByID retrieves a bookmark by ID.
func (r *Repository) GetBookmarkByID(id uint) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	err := r.db.Preload("Tags").Preload("Collection").First(&bookmark, id).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// FindByURL retrieves a user's bookmark with the given URL.
func (r *Repository) FindByURL(userID uint, url string) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	err := r.db.Where("user_id = ? AND url = ?", userID, url).First(&bookmark).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// DeleteBookmark removes a bookmark owned by the given user.
// Returns gorm.ErrRecordNotFound when the bookmark does not exist or
// belongs to someone else.
func (r *Repository) DeleteBookmark(id, userID uint) error {
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&entities.Bookmark{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountForUser returns the number of bookmarks a user has.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Bookmark{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// CountCreatedSince returns how many bookmarks the user added after
// the given time.
func (r *Repository) CountCreatedSince(userID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Bookmark{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	return count, err
}

// CountDeadForUser returns how many of the user's bookmarks failed
// their last link check.
func (r *Repository) CountDeadForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Bookmark{}).
		Where("user_id = ? AND is_dead = ?", userID, true).
		Count(&count).Error
	return count, err
}

// ListForLinkCheck returns bookmarks that have never been checked or
// were last checked before the cutoff, oldest check first.
func (r *Repository) ListForLinkCheck(checkedBefore time.Time, limit int) ([]entities.Bookmark, error) {
	if limit <= 0 {
		limit = 100
	}
	var bookmarks []entities.Bookmark
	err := r.db.
		Where("last_checked_at IS NULL OR last_checked_at < ?", checkedBefore).
		Order("last_checked_at ASC").
		Limit(limit).
		Find(&bookmarks).Error
	return bookmarks, err
}

// MarkLinkStatus records the outcome of a link check.
func (r *Repository) MarkLinkStatus(id uint, dead bool, checkedAt time.Time) error {
	return r.db.Model(&entities.Bookmark{}).Where("id = ?", id).Updates(map[string]any{
		"is_dead":         dead,
		"last_checked_at": checkedAt,
	}).Error
}
