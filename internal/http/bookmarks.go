package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/database/bookmarks"
	"github.com/mrlokans/linkshelf/internal/entities"
)

// BookmarkStore defines database operations for bookmark management.
type BookmarkStore interface {
	ListForUser(userID uint, opts bookmarks.ListOptions) ([]entities.Bookmark, int64, error)
	GetBookmarkByID(id uint) (*entities.Bookmark, error)
	DeleteBookmark(id, userID uint) error
}

type BookmarksController struct {
	store        BookmarkStore
	auditService *audit.Service
}

func NewBookmarksController(store BookmarkStore, auditService *audit.Service) *BookmarksController {
	return &BookmarksController{store: store, auditService: auditService}
}

// ListBookmarks returns the current user's bookmarks with optional filters.
// GET /api/bookmarks?collection_id=&tag_id=&q=&dead=&limit=&offset=
func (bc *BookmarksController) ListBookmarks(c *gin.Context) {
	userID := GetUserID(c)
	limit, offset := parsePagination(c, 50)

	opts := bookmarks.ListOptions{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}

	if raw := c.Query("collection_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid collection_id")
			return
		}
		collectionID := uint(id)
		opts.CollectionID = &collectionID
	}

	if raw := c.Query("tag_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid tag_id")
			return
		}
		opts.TagID = uint(id)
	}

	if raw := c.Query("dead"); raw != "" {
		dead, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "invalid dead filter")
			return
		}
		opts.Dead = &dead
	}

	items, total, err := bc.store.ListForUser(userID, opts)
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    items,
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		HasMore: int64(opts.Offset+len(items)) < total,
	})
}

// GetBookmark returns a single bookmark by ID.
// GET /api/bookmarks/:id
func (bc *BookmarksController) GetBookmark(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bookmark, err := bc.store.GetBookmarkByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "bookmark")
			return
		}
		respondInternalError(c, err, "get bookmark")
		return
	}

	if bookmark.UserID != GetUserID(c) {
		respondNotFound(c, "bookmark")
		return
	}

	c.JSON(http.StatusOK, bookmark)
}

// DeleteBookmark removes a bookmark owned by the current user.
// DELETE /api/bookmarks/:id
func (bc *BookmarksController) DeleteBookmark(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)

	bookmark, err := bc.store.GetBookmarkByID(id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "delete bookmark")
		return
	}

	if err := bc.store.DeleteBookmark(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "bookmark")
			return
		}
		respondInternalError(c, err, "delete bookmark")
		return
	}

	if bc.auditService != nil && bookmark != nil {
		bc.auditService.LogDelete(userID, "bookmark", id, bookmark.Title)
	}

	respondSuccess(c, "bookmark deleted")
}
