package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/linkshelf/internal/entities"
	"github.com/mrlokans/linkshelf/internal/tasks"
)

// TagStore defines database operations for tag management.
type TagStore interface {
	CreateTag(name string, userID uint) (*entities.Tag, error)
	GetOrCreateTag(name string, userID uint) (*entities.Tag, error)
	GetTagsForUser(userID uint) ([]entities.Tag, error)
	SearchTags(query string, userID uint) ([]entities.Tag, error)
	GetTagByID(id uint) (*entities.Tag, error)
	DeleteTag(id uint) error
	DeleteOrphanTags() (int64, error)
	AddTagToBookmark(bookmarkID, tagID uint) error
	RemoveTagFromBookmark(bookmarkID, tagID uint) error
	GetBookmarksByTag(tagID uint, userID uint) ([]entities.Bookmark, error)
	GetBookmarkByID(id uint) (*entities.Bookmark, error)
}

type TagsController struct {
	store      TagStore
	taskClient *tasks.Client
}

func NewTagsController(store TagStore, taskClient *tasks.Client) *TagsController {
	return &TagsController{store: store, taskClient: taskClient}
}

// GetAllTags returns all tags for the current user
// GET /api/tags
func (tc *TagsController) GetAllTags(c *gin.Context) {
	tags, err := tc.store.GetTagsForUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get all tags")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags, "count": len(tags)})
}

// CreateTag creates a new tag
// POST /api/tags
func (tc *TagsController) CreateTag(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	tag, err := tc.store.GetOrCreateTag(req.Name, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "create tag")
		return
	}

	respondCreated(c, tag)
}

// DeleteTag removes a tag
// DELETE /api/tags/:id
func (tc *TagsController) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := tc.store.DeleteTag(id); err != nil {
		respondInternalError(c, err, "delete tag")
		return
	}

	respondSuccess(c, "tag deleted")
}

// AddTagToBookmark attaches a tag to a bookmark, creating the tag if needed.
// POST /api/bookmarks/:id/tags
func (tc *TagsController) AddTagToBookmark(c *gin.Context) {
	bookmarkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		TagID   uint   `json:"tag_id" form:"tag_id"`
		TagName string `json:"tag_name" form:"tag_name"`
	}
	_ = c.ShouldBind(&req)

	var tagID uint
	if req.TagID > 0 {
		tagID = req.TagID
	} else if req.TagName != "" {
		tag, err := tc.store.GetOrCreateTag(req.TagName, GetUserID(c))
		if err != nil {
			respondInternalError(c, err, "get or create tag")
			return
		}
		tagID = tag.ID
	} else {
		respondBadRequest(c, "tag_id or tag_name required")
		return
	}

	if err := tc.store.AddTagToBookmark(bookmarkID, tagID); err != nil {
		respondInternalError(c, err, "add tag to bookmark")
		return
	}

	bookmark, err := tc.store.GetBookmarkByID(bookmarkID)
	if err != nil {
		respondSuccess(c, "tag added")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tag added", "tags": bookmark.Tags})
}

// RemoveTagFromBookmark detaches a tag from a bookmark
// DELETE /api/bookmarks/:id/tags/:tagId
func (tc *TagsController) RemoveTagFromBookmark(c *gin.Context) {
	bookmarkID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	tagID, ok := parseIDParam(c, "tagId")
	if !ok {
		return
	}

	if err := tc.store.RemoveTagFromBookmark(bookmarkID, tagID); err != nil {
		respondInternalError(c, err, "remove tag from bookmark")
		return
	}

	bookmark, err := tc.store.GetBookmarkByID(bookmarkID)
	if err != nil {
		respondSuccess(c, "tag removed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "tag removed", "tags": bookmark.Tags})
}

// GetBookmarksByTag returns all bookmarks carrying a specific tag
// GET /api/tags/:id/bookmarks
func (tc *TagsController) GetBookmarksByTag(c *gin.Context) {
	tagID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	bookmarks, err := tc.store.GetBookmarksByTag(tagID, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "get bookmarks by tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarks": bookmarks, "count": len(bookmarks)})
}

// TagSuggest returns tag suggestions for autocomplete
// GET /api/tags/suggest?q=query
func (tc *TagsController) TagSuggest(c *gin.Context) {
	query := c.Query("q")

	// Require minimum 2 characters for autocomplete
	if len(query) < 2 {
		c.JSON(http.StatusOK, gin.H{"tags": []entities.Tag{}})
		return
	}

	tags, err := tc.store.SearchTags(query, GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "search tags")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// CleanupOrphanTags removes all tags that no bookmark references anymore.
// Requires the task queue to be enabled.
// POST /api/admin/tags/cleanup
func (tc *TagsController) CleanupOrphanTags(c *gin.Context) {
	if tc.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is not enabled")
		return
	}

	task := tasks.CleanupOrphanTagsTask{}
	ids, err := tc.taskClient.Add(task).Save()
	if err != nil {
		log.Printf("Failed to enqueue cleanup task: %v", err)
		respondInternalError(c, err, "enqueue cleanup task")
		return
	}
	log.Printf("Enqueued CleanupOrphanTagsTask with ID: %s", ids[0])

	respondAccepted(c, "cleanup task started", gin.H{"task_id": ids[0]})
}
