// Package bootstrap assembles the process-wide runtime dependencies.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"talkshalk/internal/cache"
	"talkshalk/internal/config"
	"talkshalk/internal/credential"
	"talkshalk/internal/database"
	"talkshalk/internal/models"
	"talkshalk/internal/observability"
	"talkshalk/internal/seed"
	"talkshalk/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo content.
	SeedDemo bool
}

// Runtime is everything the HTTP server needs from the outside world.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Blobs storage.BlobStore
}

// InitRuntime connects to the database, Redis and the blob store, and
// optionally seeds demo data. Redis is optional: a nil client disables caching.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	blobs, err := NewBlobStore(ctx, cfg, afero.NewOsFs())
	if err != nil {
		return nil, fmt.Errorf("blob store init failed: %w", err)
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, cfg, db); err != nil {
			return nil, fmt.Errorf("demo seeding failed: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: r, Blobs: blobs}, nil
}

// NewBlobStore picks the blob store named by STORAGE_DRIVER. The disk driver
// writes through fs.
func NewBlobStore(ctx context.Context, cfg *config.Config, fs afero.Fs) (storage.BlobStore, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", "disk":
		return storage.NewDiskStore(fs, cfg.UploadDir, cfg.UploadBaseURL)
	case "s3", "minio":
		s3, err := storage.NewS3Store(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("ensure bucket %s: %w", cfg.S3Bucket, err)
		}
		return s3, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		observability.Logger.InfoContext(ctx, "skipping demo seed, database not empty", slog.Int64("users", users))
		return nil
	}
	_, err := seed.NewSeeder(db, credential.NewBcrypt(cfg.BcryptCost)).Run(ctx, seed.DefaultOptions)
	return err
}
