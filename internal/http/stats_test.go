package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookmarkStats struct {
	total   int64
	dead    int64
	recent  int64
	statErr error
}

func (s *fakeBookmarkStats) CountForUser(userID uint) (int64, error) {
	return s.total, s.statErr
}

func (s *fakeBookmarkStats) CountDeadForUser(userID uint) (int64, error) {
	return s.dead, s.statErr
}

func (s *fakeBookmarkStats) CountCreatedSince(userID uint, since time.Time) (int64, error) {
	return s.recent, s.statErr
}

type fakeCollectionStats struct {
	total int64
}

func (s *fakeCollectionStats) CountForUser(userID uint) (int64, error) {
	return s.total, nil
}

type fakeTagStats struct {
	total int64
}

func (s *fakeTagStats) CountForUser(userID uint) (int64, error) {
	return s.total, nil
}

func TestGetStats(t *testing.T) {
	controller := NewStatsController(
		&fakeBookmarkStats{total: 42, dead: 3, recent: 5},
		&fakeCollectionStats{total: 7},
		&fakeTagStats{total: 11},
	)
	router := gin.New()
	router.GET("/api/stats", controller.GetStats)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.Bookmarks)
	assert.Equal(t, int64(7), resp.Collections)
	assert.Equal(t, int64(11), resp.Tags)
	assert.Equal(t, int64(3), resp.DeadLinks)
	assert.Equal(t, int64(5), resp.AddedLastWeek)
}

func TestGetStats_StoreError(t *testing.T) {
	controller := NewStatsController(
		&fakeBookmarkStats{statErr: errors.New("db down")},
		&fakeCollectionStats{},
		&fakeTagStats{},
	)
	router := gin.New()
	router.GET("/api/stats", controller.GetStats)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/stats", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
