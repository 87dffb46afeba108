package bookmarks

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/linkshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_bookmarks_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Collection{},
		&entities.Bookmark{},
		&entities.Tag{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, db, cleanup
}

func seedBookmark(t *testing.T, db *gorm.DB, bookmark entities.Bookmark) *entities.Bookmark {
	require.NoError(t, db.Create(&bookmark).Error)
	return &bookmark
}

func TestRepository_ListForUser(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "Go", URL: "https://go.dev/"})
	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "SQLite", URL: "https://sqlite.org/"})
	seedBookmark(t, db, entities.Bookmark{UserID: 2, Title: "Other", URL: "https://other.test/"})

	bookmarks, total, err := repo.ListForUser(1, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, bookmarks, 2)
}

func TestRepository_ListForUser_SearchQuery(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "Go blog", URL: "https://go.dev/blog"})
	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "Recipes", URL: "https://food.test/"})

	bookmarks, total, err := repo.ListForUser(1, ListOptions{Query: "go"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "Go blog", bookmarks[0].Title)
}

func TestRepository_ListForUser_ByCollection(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	collection := entities.Collection{UserID: 1, Name: "Reading"}
	require.NoError(t, db.Create(&collection).Error)

	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "in", URL: "https://in.test/", CollectionID: &collection.ID})
	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "out", URL: "https://out.test/"})

	bookmarks, total, err := repo.ListForUser(1, ListOptions{CollectionID: &collection.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, "in", bookmarks[0].Title)
}

func TestRepository_ListForUser_Pagination(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	for _, url := range []string{"https://a.test/", "https://b.test/", "https://c.test/"} {
		seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: url, URL: url})
	}

	bookmarks, total, err := repo.ListForUser(1, ListOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, bookmarks, 2)

	bookmarks, _, err = repo.ListForUser(1, ListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, bookmarks, 1)
}

func TestRepository_FindByURL(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "Go", URL: "https://go.dev/"})

	found, err := repo.FindByURL(1, "https://go.dev/")
	require.NoError(t, err)
	assert.Equal(t, "Go", found.Title)

	// Same URL, different user
	_, err = repo.FindByURL(2, "https://go.dev/")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_DeleteBookmark(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	bookmark := seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "x", URL: "https://x.test/"})

	// Wrong owner cannot delete
	err := repo.DeleteBookmark(bookmark.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.DeleteBookmark(bookmark.ID, 1))

	_, err = repo.GetBookmarkByID(bookmark.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_Counts(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "a", URL: "https://a.test/"})
	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "b", URL: "https://b.test/", IsDead: true})

	total, err := repo.CountForUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	dead, err := repo.CountDeadForUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)

	recent, err := repo.CountCreatedSince(1, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)

	old, err := repo.CountCreatedSince(1, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), old)
}

func TestRepository_ListForLinkCheck(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	stale := time.Now().Add(-48 * time.Hour)
	fresh := time.Now()

	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "never", URL: "https://never.test/"})
	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "stale", URL: "https://stale.test/", LastCheckedAt: &stale})
	seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "fresh", URL: "https://fresh.test/", LastCheckedAt: &fresh})

	due, err := repo.ListForLinkCheck(time.Now().Add(-24*time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, due, 2)

	urls := []string{due[0].URL, due[1].URL}
	assert.Contains(t, urls, "https://never.test/")
	assert.Contains(t, urls, "https://stale.test/")
}

func TestRepository_MarkLinkStatus(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	bookmark := seedBookmark(t, db, entities.Bookmark{UserID: 1, Title: "x", URL: "https://x.test/"})

	checkedAt := time.Now()
	require.NoError(t, repo.MarkLinkStatus(bookmark.ID, true, checkedAt))

	updated, err := repo.GetBookmarkByID(bookmark.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsDead)
	require.NotNil(t, updated.LastCheckedAt)
}
