package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"talkshalk/internal/config"
	"talkshalk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrateAndConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	for _, m := range []interface{}{&models.User{}, &models.Post{}, &models.Comment{}, &models.Like{}} {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_like_user_post"))

	cfg := &config.Config{DBMaxOpenConns: 1, DBMaxIdleConns: 1, DBConnMaxLifetimeMinutes: 15}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	ctx := context.Background()

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 1", 1 }, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "not-found must not be logged")

	l.Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 2", 0 }, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) { return "SELECT 3", 0 }, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), func() (string, int64) { return "SELECT 4", 0 }, errors.New("boom"))
	assert.Empty(t, buf.String())
}
