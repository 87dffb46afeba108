// Package tags provides database operations for tag management.
//
// This package implements the TagStore interface defined in internal/http/stores.go.
//
// # Interface Implementation
//
//	var _ http.TagStore = (*Repository)(nil)
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.GetOrCreateTag("golang", userID)
package tags

import (
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/entities"
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateTag creates a new tag.
func (r *Repository) CreateTag(name string, userID uint) (*entities.Tag, error) {
	tag := &entities.Tag{
		Name:   name,
		UserID: userID,
	}
	if err := r.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// GetOrCreateTag retrieves or creates a tag (case-insensitive).
func (r *Repository) GetOrCreateTag(name string, userID uint) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.Where("LOWER(name) = LOWER(?) AND user_id = ?", name, userID).First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		return r.CreateTag(name, userID)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetTagsForUser retrieves all tags for a user.
func (r *Repository) GetTagsForUser(userID uint) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := r.db.Where("user_id = ?", userID).Find(&tags).Error
	return tags, err
}

// CountForUser returns the number of tags a user owns.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Tag{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// SearchTags searches tags by name (case-insensitive partial match).
func (r *Repository) SearchTags(query string, userID uint) ([]entities.Tag, error) {
	var tags []entities.Tag
	searchPattern := "%" + query + "%"
	err := r.db.Where("user_id = ? AND LOWER(name) LIKE LOWER(?)", userID, searchPattern).Find(&tags).Error
	return tags, err
}

// GetTagByID retrieves a tag by ID.
func (r *Repository) GetTagByID(id uint) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.First(&tag, id).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag deletes a tag.
func (r *Repository) DeleteTag(id uint) error {
	return r.db.Delete(&entities.Tag{}, id).Error
}

// IsTagOrphan checks if a tag has no associated bookmarks.
func (r *Repository) IsTagOrphan(tagID uint) (bool, error) {
	var count int64
	if err := r.db.Table("bookmark_tags").Where("tag_id = ?", tagID).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// DeleteTagIfOrphan deletes a tag if it has no associations.
func (r *Repository) DeleteTagIfOrphan(tagID uint) error {
	orphan, err := r.IsTagOrphan(tagID)
	if err != nil {
		return err
	}
	if orphan {
		return r.DeleteTag(tagID)
	}
	return nil
}

// DeleteOrphanTags removes all orphan tags.
func (r *Repository) DeleteOrphanTags() (int64, error) {
	result := r.db.Exec(`
		DELETE FROM tags
		WHERE id NOT IN (SELECT tag_id FROM bookmark_tags)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// AddTagToBookmark associates a tag with a bookmark.
func (r *Repository) AddTagToBookmark(bookmarkID, tagID uint) error {
	var bookmark entities.Bookmark
	if err := r.db.First(&bookmark, bookmarkID).Error; err != nil {
		return err
	}
	var tag entities.Tag
	if err := r.db.First(&tag, tagID).Error; err != nil {
		return err
	}
	return r.db.Model(&bookmark).Association("Tags").Append(&tag)
}

// RemoveTagFromBookmark removes a tag from a bookmark.
func (r *Repository) RemoveTagFromBookmark(bookmarkID, tagID uint) error {
	var bookmark entities.Bookmark
	if err := r.db.First(&bookmark, bookmarkID).Error; err != nil {
		return err
	}
	var tag entities.Tag
	if err := r.db.First(&tag, tagID).Error; err != nil {
		return err
	}
	if err := r.db.Model(&bookmark).Association("Tags").Delete(&tag); err != nil {
		return err
	}
	return r.DeleteTagIfOrphan(tagID)
}

// GetBookmarksByTag retrieves bookmarks that carry a specific tag.
func (r *Repository) GetBookmarksByTag(tagID uint, userID uint) ([]entities.Bookmark, error) {
	var tag entities.Tag
	if err := r.db.First(&tag, tagID).Error; err != nil {
		return nil, err
	}

	var bookmarks []entities.Bookmark
	query := r.db.
		Preload("Tags").
		Preload("Collection").
		Joins("JOIN bookmark_tags ON bookmark_tags.bookmark_id = bookmarks.id").
		Where("bookmark_tags.tag_id = ?", tagID)

	if userID > 0 {
		query = query.Where("bookmarks.user_id = ?", userID)
	}

	err := query.Find(&bookmarks).Error
	return bookmarks, err
}

// GetBookmarkByID retrieves a bookmark by ID (for TagStore interface).
func (r *Repository) GetBookmarkByID(id uint) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	err := r.db.Preload("Tags").Preload("Collection").First(&bookmark, id).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}
