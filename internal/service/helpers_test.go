package service

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/config"
	"github.com/naimur978/Expense-Tracker/internal/database"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err, "failed to create test database")
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokens(clock *testClock) *util.TokenService {
	return util.NewTokenService("test-secret", "expense-tracker", 5*time.Minute, time.Hour, util.WithClock(clock.Now))
}

const testBcryptCost = bcrypt.MinCost
