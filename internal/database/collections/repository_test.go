package collections

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/linkshelf/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_collections_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Collection{},
		&entities.Bookmark{},
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

func TestRepository_CreateCollection(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	collection, err := repo.CreateCollection("Reading", 1)

	require.NoError(t, err)
	assert.NotZero(t, collection.ID)
	assert.Equal(t, "Reading", collection.Name)
	assert.Equal(t, uint(1), collection.UserID)
}

func TestRepository_FindByName(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.CreateCollection("Tools", 1)
	require.NoError(t, err)

	found, err := repo.FindByName(1, "Tools")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Scoped to the user
	_, err = repo.FindByName(2, "Tools")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_ListForUser_WithCounts(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	reading, err := repo.CreateCollection("Reading", 1)
	require.NoError(t, err)
	_, err = repo.CreateCollection("Empty", 1)
	require.NoError(t, err)
	_, err = repo.CreateCollection("Foreign", 2)
	require.NoError(t, err)

	for _, url := range []string{"https://a.test/", "https://b.test/"} {
		require.NoError(t, db.Create(&entities.Bookmark{
			UserID:       1,
			Title:        url,
			URL:          url,
			CollectionID: &reading.ID,
		}).Error)
	}

	results, err := repo.ListForUser(1)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Alphabetical: Empty first
	assert.Equal(t, "Empty", results[0].Name)
	assert.Equal(t, int64(0), results[0].BookmarkCount)
	assert.Equal(t, "Reading", results[1].Name)
	assert.Equal(t, int64(2), results[1].BookmarkCount)
}

func TestRepository_DeleteCollection_DetachesBookmarks(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	collection, err := repo.CreateCollection("Doomed", 1)
	require.NoError(t, err)

	bookmark := entities.Bookmark{
		UserID:       1,
		Title:        "survivor",
		URL:          "https://survivor.test/",
		CollectionID: &collection.ID,
	}
	require.NoError(t, db.Create(&bookmark).Error)

	require.NoError(t, repo.DeleteCollection(collection.ID, 1))

	_, err = repo.GetCollectionByID(collection.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var survivor entities.Bookmark
	require.NoError(t, db.First(&survivor, bookmark.ID).Error)
	assert.Nil(t, survivor.CollectionID)
}

func TestRepository_DeleteCollection_WrongOwner(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	collection, err := repo.CreateCollection("Private", 1)
	require.NoError(t, err)

	err = repo.DeleteCollection(collection.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
