// Package collections provides database operations for collection
// management.
//
// This package implements the CollectionStore interface defined in
// internal/http/stores.go.
package collections

import (
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/entities"
)

// CollectionWithCount pairs a collection with the number of bookmarks
// it holds.
type CollectionWithCount struct {
	entities.Collection
	BookmarkCount int64 `json:"bookmark_count"`
}

// Repository handles all collection database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new collections repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateCollection creates a new collection.
func (r *Repository) CreateCollection(name string, userID uint) (*entities.Collection, error) {
	collection := &entities.Collection{
		Name:   name,
		UserID: userID,
	}
	if err := r.db.Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// FindByName retrieves a user's collection with the given name.
func (r *Repository) FindByName(userID uint, name string) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.db.Where("user_id = ? AND name = ?", userID, name).First(&collection).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// GetCollectionByID retrieves a collection by ID.
func (r *Repository) GetCollectionByID(id uint) (*entities.Collection, error) {
	var collection entities.Collection
	err := r.db.First(&collection, id).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// ListForUser retrieves all of a user's collections with their
// bookmark counts, alphabetically.
func (r *Repository) ListForUser(userID uint) ([]CollectionWithCount, error) {
	var results []CollectionWithCount
	err := r.db.Model(&entities.Collection{}).
		Select("collections.*, COUNT(bookmarks.id) AS bookmark_count").
		Joins("LEFT JOIN bookmarks ON bookmarks.collection_id = collections.id AND bookmarks.deleted_at IS NULL").
		Where("collections.user_id = ?", userID).
		Group("collections.id").
		Order("collections.name ASC").
		Find(&results).Error
	return results, err
}

// CountForUser returns the number of collections a user has.
func (r *Repository) CountForUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Collection{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteCollection removes a user's collection. Bookmarks in the
// collection are kept and detached.
func (r *Repository) DeleteCollection(id, userID uint) error {
	var collection entities.Collection
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&collection).Error
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Bookmark{}).
			Where("collection_id = ?", collection.ID).
			Update("collection_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&collection).Error
	})
}
