package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/linkshelf/internal/entities"
)

func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))
	return NewRepository(db)
}

func logEvent(t *testing.T, repo *Repository, userID uint, eventType entities.AuditEventType, action string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Action:    action,
		Status:    entities.AuditStatusSuccess,
		CreatedAt: createdAt,
	}))
}

func TestLogEventStampsCreatedAt(t *testing.T) {
	repo := setupTestRepo(t)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventImport,
		Action:      "bookmark_import",
		Description: "Imported 10 bookmarks from a browser export",
		Status:      entities.AuditStatusSuccess,
	}
	require.NoError(t, repo.LogEvent(event))

	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestGetEvents(t *testing.T) {
	repo := setupTestRepo(t)

	now := time.Now()
	for i := 0; i < 15; i++ {
		logEvent(t, repo, 1, entities.AuditEventImport, fmt.Sprintf("import_%d", i), now.Add(time.Duration(-i)*time.Hour))
	}
	for i := 0; i < 5; i++ {
		logEvent(t, repo, 2, entities.AuditEventDelete, "other_user_delete", now)
	}

	t.Run("all users", func(t *testing.T) {
		events, total, err := repo.GetEvents(0, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("single user", func(t *testing.T) {
		events, total, err := repo.GetEvents(1, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 15)
	})

	t.Run("pagination", func(t *testing.T) {
		first, total, err := repo.GetEvents(1, 5, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, first, 5)

		second, _, err := repo.GetEvents(1, 5, 5)
		require.NoError(t, err)
		assert.Len(t, second, 5)
		assert.NotEqual(t, first[0].ID, second[0].ID)
	})

	t.Run("newest first", func(t *testing.T) {
		events, _, err := repo.GetEvents(1, 10, 0)
		require.NoError(t, err)
		for i := 1; i < len(events); i++ {
			assert.False(t, events[i-1].CreatedAt.Before(events[i].CreatedAt))
		}
	})

	t.Run("zero limit falls back to the default page size", func(t *testing.T) {
		events, total, err := repo.GetEvents(0, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})
}

func TestGetEventsByType(t *testing.T) {
	repo := setupTestRepo(t)

	now := time.Now()
	logEvent(t, repo, 1, entities.AuditEventImport, "bookmark_import", now)
	logEvent(t, repo, 1, entities.AuditEventDelete, "bookmark_delete", now)
	logEvent(t, repo, 1, entities.AuditEventImport, "bookmark_import", now)

	events, total, err := repo.GetEventsByType(entities.AuditEventImport, 1, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, entities.AuditEventImport, e.EventType)
	}
}

func TestDeleteOldEvents(t *testing.T) {
	repo := setupTestRepo(t)

	now := time.Now()
	logEvent(t, repo, 1, entities.AuditEventImport, "old_import", now.Add(-48*time.Hour))
	logEvent(t, repo, 1, entities.AuditEventDelete, "new_delete", now.Add(-time.Hour))

	deleted, err := repo.DeleteOldEvents(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := repo.GetEvents(0, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, events, 1)
	assert.Equal(t, "new_delete", events[0].Action)
}
