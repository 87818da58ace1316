package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/naimur978/Expense-Tracker/internal/config"
	"github.com/naimur978/Expense-Tracker/internal/database"
	"github.com/naimur978/Expense-Tracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  mode: test\ndatabase:\n  path: " + dbPath + "\njwt:\n  secret: test-secret\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_SeedOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	require.NoError(t, run([]string{"--config", writeConfig(t, dbPath), "--seed-only"}))

	// run closed its handle; the file is seeded and reopenable
	db, err := database.Init(config.DatabaseConfig{Path: dbPath})
	require.NoError(t, err)
	defer database.Close(db)

	var count int64
	require.NoError(t, db.Model(&models.Expense{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}

func TestRun_Errors(t *testing.T) {
	err := run([]string{"--no-such-flag"})
	assert.Error(t, err)

	err = run([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "load config")
}
