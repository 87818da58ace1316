package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/config"
	"github.com/naimur978/Expense-Tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "nested", "test.db")})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestUniqueUserConstraint(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&models.User{Username: "alice", Email: "a@example.com", PasswordHash: "x"}).Error)

	err := db.Create(&models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)

	err = db.Create(&models.User{Username: "bob", Email: "a@example.com", PasswordHash: "x"}).Error
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey), "got %v", err)
}

func TestSeed(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&models.Expense{Description: "old", AmountCents: 1, Category: models.CategoryOther, Date: "2020-01-01"}).Error)

	today := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	created, err := Seed(db, today)
	require.NoError(t, err)
	assert.Len(t, created, 5)

	var all []models.Expense
	require.NoError(t, db.Order("date DESC").Find(&all).Error)
	require.Len(t, all, 5)
	assert.Equal(t, "2024-05-10", all[0].Date)
	assert.Equal(t, "Movie Night", all[0].Description)

	var rent models.Expense
	require.NoError(t, db.Where("description = ?", "Monthly Rent").First(&rent).Error)
	assert.Equal(t, int64(120000), rent.AmountCents)
	assert.Equal(t, "2024-05-08", rent.Date)
}

func TestPragmas(t *testing.T) {
	db := setupTestDB(t)

	var mode string
	require.NoError(t, db.Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)

	// hold one connection so the next query runs on a different one
	sqlDB, err := db.DB()
	require.NoError(t, err)
	conn, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	var timeout int
	require.NoError(t, db.Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, 5000, timeout)
}

func TestDSN(t *testing.T) {
	got := dsn("data/x.db")
	assert.Contains(t, got, "file:data/x.db?")
	assert.Contains(t, got, "_busy_timeout=5000")
	assert.Contains(t, got, "_txlock=immediate")
}
