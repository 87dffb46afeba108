package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/audit"
	"github.com/mrlokans/linkshelf/internal/database/collections"
	"github.com/mrlokans/linkshelf/internal/entities"
)

// CollectionStore defines database operations for collection management.
type CollectionStore interface {
	ListForUser(userID uint) ([]collections.CollectionWithCount, error)
	CreateCollection(name string, userID uint) (*entities.Collection, error)
	FindByName(userID uint, name string) (*entities.Collection, error)
	GetCollectionByID(id uint) (*entities.Collection, error)
	DeleteCollection(id, userID uint) error
}

type CollectionsController struct {
	store        CollectionStore
	auditService *audit.Service
}

func NewCollectionsController(store CollectionStore, auditService *audit.Service) *CollectionsController {
	return &CollectionsController{store: store, auditService: auditService}
}

// ListCollections returns the user's collections with bookmark counts.
// GET /api/collections
func (cc *CollectionsController) ListCollections(c *gin.Context) {
	items, err := cc.store.ListForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list collections")
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": items, "count": len(items)})
}

// CreateCollection creates a new collection for the current user.
// Collection names are unique per user; creating an existing name
// returns the existing collection instead of a duplicate.
// POST /api/collections
func (cc *CollectionsController) CreateCollection(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondBadRequest(c, "name is required")
		return
	}

	userID := GetUserID(c)

	existing, err := cc.store.FindByName(userID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "create collection")
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	collection, err := cc.store.CreateCollection(name, userID)
	if err != nil {
		respondInternalError(c, err, "create collection")
		return
	}

	respondCreated(c, collection)
}

// GetCollection returns a single collection by ID.
// GET /api/collections/:id
func (cc *CollectionsController) GetCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	collection, err := cc.store.GetCollectionByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "collection")
			return
		}
		respondInternalError(c, err, "get collection")
		return
	}

	if collection.UserID != GetUserID(c) {
		respondNotFound(c, "collection")
		return
	}

	c.JSON(http.StatusOK, collection)
}

// DeleteCollection removes a collection. Bookmarks in the collection
// are detached, not deleted.
// DELETE /api/collections/:id
func (cc *CollectionsController) DeleteCollection(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	userID := GetUserID(c)

	collection, err := cc.store.GetCollectionByID(id)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondInternalError(c, err, "delete collection")
		return
	}

	if err := cc.store.DeleteCollection(id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "collection")
			return
		}
		respondInternalError(c, err, "delete collection")
		return
	}

	if cc.auditService != nil && collection != nil {
		cc.auditService.LogDelete(userID, "collection", id, collection.Name)
	}

	respondSuccess(c, "collection deleted")
}
