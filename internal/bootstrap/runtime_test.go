package bootstrap

import (
	"fmt"
	"testing"

	"talkshalk/internal/config"
	"talkshalk/internal/database"
	"talkshalk/internal/models"
	"talkshalk/internal/storage"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewBlobStore(t *testing.T) {
	t.Run("disk driver writes through the given fs", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		cfg := &config.Config{StorageDriver: "disk", UploadDir: "uploads", UploadBaseURL: "/uploads"}

		store, err := NewBlobStore(t.Context(), cfg, fs)
		require.NoError(t, err)

		disk, ok := store.(*storage.DiskStore)
		require.True(t, ok)
		assert.Equal(t, "/uploads", disk.BaseURL())

		exists, err := afero.DirExists(fs, "uploads")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("empty driver defaults to disk", func(t *testing.T) {
		store, err := NewBlobStore(t.Context(), &config.Config{UploadDir: "u"}, afero.NewMemMapFs())
		require.NoError(t, err)
		assert.IsType(t, &storage.DiskStore{}, store)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := NewBlobStore(t.Context(), &config.Config{StorageDriver: "tape"}, afero.NewMemMapFs())
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}

func TestSeedIfEmpty(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{BcryptCost: 4}
	require.NoError(t, seedIfEmpty(t.Context(), cfg, db))

	var first int64
	db.Model(&models.User{}).Count(&first)
	assert.Positive(t, first)

	// A second run leaves a populated database alone.
	require.NoError(t, seedIfEmpty(t.Context(), cfg, db))
	var second int64
	db.Model(&models.User{}).Count(&second)
	assert.Equal(t, first, second)
}
