package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// BookmarkStatsStore defines the bookmark counters the stats endpoint reads.
type BookmarkStatsStore interface {
	CountForUser(userID uint) (int64, error)
	CountDeadForUser(userID uint) (int64, error)
	CountCreatedSince(userID uint, since time.Time) (int64, error)
}

// CollectionStatsStore defines the collection counters the stats endpoint reads.
type CollectionStatsStore interface {
	CountForUser(userID uint) (int64, error)
}

// TagStatsStore defines the tag counters the stats endpoint reads.
type TagStatsStore interface {
	CountForUser(userID uint) (int64, error)
}

type StatsController struct {
	bookmarks   BookmarkStatsStore
	collections CollectionStatsStore
	tags        TagStatsStore
}

func NewStatsController(bookmarks BookmarkStatsStore, collections CollectionStatsStore, tags TagStatsStore) *StatsController {
	return &StatsController{bookmarks: bookmarks, collections: collections, tags: tags}
}

// StatsResponse summarizes a user's library
type StatsResponse struct {
	Bookmarks     int64 `json:"bookmarks"`
	Collections   int64 `json:"collections"`
	Tags          int64 `json:"tags"`
	DeadLinks     int64 `json:"dead_links"`
	AddedLastWeek int64 `json:"added_last_week"`
}

// GetStats returns library counters for the current user
// GET /api/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	userID := GetUserID(c)

	bookmarkCount, err := sc.bookmarks.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count bookmarks")
		return
	}

	collectionCount, err := sc.collections.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count collections")
		return
	}

	deadCount, err := sc.bookmarks.CountDeadForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count dead links")
		return
	}

	tagCount, err := sc.tags.CountForUser(userID)
	if err != nil {
		respondInternalError(c, err, "count tags")
		return
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	recentCount, err := sc.bookmarks.CountCreatedSince(userID, weekAgo)
	if err != nil {
		respondInternalError(c, err, "count recent bookmarks")
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Bookmarks:     bookmarkCount,
		Collections:   collectionCount,
		Tags:          tagCount,
		DeadLinks:     deadCount,
		AddedLastWeek: recentCount,
	})
}
