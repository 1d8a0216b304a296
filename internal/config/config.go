// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"talkshalk/internal/session"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	JWTSecret                 string `mapstructure:"JWT_SECRET"`
	JWTIssuer                 string `mapstructure:"JWT_ISSUER"`
	JWTAudience               string `mapstructure:"JWT_AUDIENCE"`
	SessionTTLHours           int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionPersistentTTLHours int    `mapstructure:"SESSION_PERSISTENT_TTL_HOURS"`
	BcryptCost                int    `mapstructure:"BCRYPT_COST"`

	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	RedisURL string `mapstructure:"REDIS_URL"`

	StorageDriver      string `mapstructure:"STORAGE_DRIVER"`
	UploadDir          string `mapstructure:"UPLOAD_DIR"`
	UploadBaseURL      string `mapstructure:"UPLOAD_BASE_URL"`
	StorageMaxUploadMB int    `mapstructure:"STORAGE_MAX_UPLOAD_MB"`
	S3Endpoint         string `mapstructure:"S3_ENDPOINT"`
	S3AccessKey        string `mapstructure:"S3_ACCESS_KEY"`
	S3SecretKey        string `mapstructure:"S3_SECRET_KEY"`
	S3Bucket           string `mapstructure:"S3_BUCKET"`
	S3UseSSL           bool   `mapstructure:"S3_USE_SSL"`
	S3PublicURL        string `mapstructure:"S3_PUBLIC_URL"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	// The base file is optional; env vars and defaults are enough to boot.
	_ = v.ReadInConfig()

	env := v.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", "talkshalk-api")
	v.SetDefault("JWT_AUDIENCE", "talkshalk-client")
	v.SetDefault("SESSION_TTL_HOURS", 7*24)
	v.SetDefault("SESSION_PERSISTENT_TTL_HOURS", 30*24)
	v.SetDefault("BCRYPT_COST", 10)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "user")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "talkshalk")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)

	v.SetDefault("REDIS_URL", "localhost:6379")

	v.SetDefault("STORAGE_DRIVER", "disk")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_BASE_URL", "/uploads")
	v.SetDefault("STORAGE_MAX_UPLOAD_MB", 5)
	v.SetDefault("S3_BUCKET", "talkshalk-media")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_EXPORTER", "stdout")
	v.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.SessionTTLHours <= 0 || c.SessionPersistentTTLHours <= 0 {
		return errors.New("session TTLs must be positive")
	}
	if c.StorageMaxUploadMB <= 0 {
		return errors.New("STORAGE_MAX_UPLOAD_MB must be positive")
	}
	switch strings.ToLower(c.StorageDriver) {
	case "disk", "":
	case "s3", "minio":
		if c.S3Endpoint == "" || c.S3Bucket == "" {
			return errors.New("S3_ENDPOINT and S3_BUCKET are required when STORAGE_DRIVER is s3 or minio")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
	} else if len(c.JWTSecret) < 32 {
		log.Println("WARNING: JWT_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
	}

	return nil
}

// SessionConfig builds the Session Authority settings. It is read once at startup.
func (c *Config) SessionConfig() session.Config {
	return session.Config{
		Secret:        []byte(c.JWTSecret),
		Issuer:        c.JWTIssuer,
		Audience:      c.JWTAudience,
		DefaultTTL:    time.Duration(c.SessionTTLHours) * time.Hour,
		PersistentTTL: time.Duration(c.SessionPersistentTTLHours) * time.Hour,
	}
}
