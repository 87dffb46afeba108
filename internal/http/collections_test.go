package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/database/collections"
	"github.com/mrlokans/linkshelf/internal/entities"
)

type fakeCollectionStore struct {
	items   []entities.Collection
	counts  map[uint]int64
	nextID  uint
	deleted []uint
}

func (s *fakeCollectionStore) ListForUser(userID uint) ([]collections.CollectionWithCount, error) {
	var out []collections.CollectionWithCount
	for _, c := range s.items {
		if c.UserID == userID {
			out = append(out, collections.CollectionWithCount{Collection: c, BookmarkCount: s.counts[c.ID]})
		}
	}
	return out, nil
}

func (s *fakeCollectionStore) CreateCollection(name string, userID uint) (*entities.Collection, error) {
	s.nextID++
	c := entities.Collection{ID: s.nextID, UserID: userID, Name: name}
	s.items = append(s.items, c)
	return &c, nil
}

func (s *fakeCollectionStore) FindByName(userID uint, name string) (*entities.Collection, error) {
	for i := range s.items {
		if s.items[i].UserID == userID && s.items[i].Name == name {
			return &s.items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeCollectionStore) GetCollectionByID(id uint) (*entities.Collection, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeCollectionStore) DeleteCollection(id, userID uint) error {
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].UserID == userID {
			s.deleted = append(s.deleted, id)
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func collectionsRouter(store CollectionStore) *gin.Engine {
	controller := NewCollectionsController(store, nil)
	router := gin.New()
	router.GET("/api/collections", controller.ListCollections)
	router.POST("/api/collections", controller.CreateCollection)
	router.GET("/api/collections/:id", controller.GetCollection)
	router.DELETE("/api/collections/:id", controller.DeleteCollection)
	return router
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestListCollections(t *testing.T) {
	store := &fakeCollectionStore{
		items: []entities.Collection{
			{ID: 1, UserID: 0, Name: "Reading"},
			{ID: 2, UserID: 99, Name: "Someone else's"},
		},
		counts: map[uint]int64{1: 3},
	}
	router := collectionsRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/collections", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Collections []collections.CollectionWithCount `json:"collections"`
		Count       int                               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Reading", resp.Collections[0].Name)
	assert.Equal(t, int64(3), resp.Collections[0].BookmarkCount)
}

func TestCreateCollection(t *testing.T) {
	store := &fakeCollectionStore{counts: map[uint]int64{}}
	router := collectionsRouter(store)

	w := postJSON(router, "/api/collections", gin.H{"name": "Reading"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Reading")
}

func TestCreateCollection_ExistingNameReturnsExisting(t *testing.T) {
	store := &fakeCollectionStore{
		items:  []entities.Collection{{ID: 5, UserID: 0, Name: "Reading"}},
		counts: map[uint]int64{},
		nextID: 5,
	}
	router := collectionsRouter(store)

	w := postJSON(router, "/api/collections", gin.H{"name": "Reading"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp entities.Collection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint(5), resp.ID)
	assert.Len(t, store.items, 1)
}

func TestCreateCollection_MissingName(t *testing.T) {
	router := collectionsRouter(&fakeCollectionStore{counts: map[uint]int64{}})

	w := postJSON(router, "/api/collections", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCollection_BlankName(t *testing.T) {
	router := collectionsRouter(&fakeCollectionStore{counts: map[uint]int64{}})

	w := postJSON(router, "/api/collections", gin.H{"name": "   "})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCollection_WrongOwner(t *testing.T) {
	store := &fakeCollectionStore{
		items:  []entities.Collection{{ID: 1, UserID: 99, Name: "Not yours"}},
		counts: map[uint]int64{},
	}
	router := collectionsRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/collections/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCollection(t *testing.T) {
	store := &fakeCollectionStore{
		items:  []entities.Collection{{ID: 1, UserID: 0, Name: "Reading"}},
		counts: map[uint]int64{},
	}
	router := collectionsRouter(store)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/collections/1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{1}, store.deleted)
}

func TestDeleteCollection_NotFound(t *testing.T) {
	router := collectionsRouter(&fakeCollectionStore{counts: map[uint]int64{}})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/collections/42", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
