package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/linkshelf/internal/entities"
)

func TestNewDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")

	// Migrations should have created all tables
	for _, table := range []string{"users", "collections", "bookmarks", "tags", "import_sessions", "audit_events", "settings"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestDatabase_RoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()

	bookmark := entities.Bookmark{UserID: 1, Title: "Go", URL: "https://go.dev"}
	require.NoError(t, db.DB.Create(&bookmark).Error)

	var loaded entities.Bookmark
	require.NoError(t, db.DB.First(&loaded, bookmark.ID).Error)
	assert.Equal(t, "https://go.dev", loaded.URL)
}

func TestDatabase_Close(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewDatabase(dbPath)
	require.NoError(t, err)

	assert.NoError(t, db.Close())
}
