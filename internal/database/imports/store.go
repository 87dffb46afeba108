// Package imports provides the transactional storage used by the
// bookmark import reconciler, plus import session bookkeeping.
package imports

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/entities"
	"github.com/mrlokans/linkshelf/internal/importers"
)

// Store is the gorm-backed implementation of importers.Store.
type Store struct {
	db *gorm.DB
}

var _ importers.Store = (*Store)(nil)

// NewStore creates a new import store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithinTransaction runs fn against a transactional store. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithinTransaction(fn func(tx importers.Store) error) error {
	return s.db.Transaction(func(txDB *gorm.DB) error {
		return fn(&Store{db: txDB})
	})
}

// FindBookmarkByURL returns the user's bookmark with the given URL, or
// (nil, nil) when none exists.
func (s *Store) FindBookmarkByURL(userID uint, url string) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	err := s.db.Where("user_id = ? AND url = ?", userID, url).First(&bookmark).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// CreateBookmark inserts a bookmark.
func (s *Store) CreateBookmark(bookmark *entities.Bookmark) error {
	return s.db.Create(bookmark).Error
}

// FindCollectionByName returns the user's collection with the given
// name, or (nil, nil) when none exists.
func (s *Store) FindCollectionByName(userID uint, name string) (*entities.Collection, error) {
	var collection entities.Collection
	err := s.db.Where("user_id = ? AND name = ?", userID, name).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &collection, nil
}

// CreateCollection inserts a collection.
func (s *Store) CreateCollection(collection *entities.Collection) error {
	return s.db.Create(collection).Error
}
