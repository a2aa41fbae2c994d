package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jobdesk/jobdesk/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func TestRepository_LogEvent(t *testing.T) {
	repo := setupTestDB(t)

	event := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "login",
		IPAddress: "1.2.3.4",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, repo.LogEvent(event))

	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero(), "LogEvent should stamp CreatedAt")
}

func TestRepository_ListEvents(t *testing.T) {
	repo := setupTestDB(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventAuth,
			Action:    "login",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    2,
		EventType: entities.AuditEventJob,
		Action:    "job_create",
		Status:    entities.AuditStatusSuccess,
	}))

	events, total, err := repo.ListEvents(1, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, events, 3)

	// Newest first
	assert.True(t, events[0].CreatedAt.After(events[2].CreatedAt))

	all, total, err := repo.ListEvents(0, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, all, 4)
}

func TestRepository_ListEvents_Pagination(t *testing.T) {
	repo := setupTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventAuth,
			Action:    "login",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}))
	}

	page, total, err := repo.ListEvents(1, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, page, 2)
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := setupTestDB(t)

	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "login",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-40 * 24 * time.Hour),
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventAuth,
		Action:    "login",
		Status:    entities.AuditStatusSuccess,
	}))

	deleted, err := repo.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, total, err := repo.ListEvents(0, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
