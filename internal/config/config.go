package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"anoa.com/notevault/pkg/database"
	"anoa.com/notevault/pkg/storage"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	Database database.Config
	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret string
	JWTTTL    time.Duration

	Storage     storage.Config
	MaxUploadMB int

	RateLimitUpload time.Duration
	StatsCacheTTL   time.Duration

	AdminEmail    string
	AdminPassword string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		Database: database.Config{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASS"),
			Name:     os.Getenv("DB_NAME"),
			Port:     os.Getenv("DB_PORT"),
		},
		RedisURL: os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		Storage: storage.Config{
			Driver:           getEnv("STORAGE_DRIVER", "local"),
			LocalDir:         getEnv("UPLOAD_DIR", "uploads"),
			CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
			CloudinaryFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "notevault"),
			S3: storage.S3Config{
				AccessKey: os.Getenv("S3_ACCESS_KEY"),
				SecretKey: os.Getenv("S3_SECRET_KEY"),
				Bucket:    os.Getenv("S3_BUCKET"),
				Region:    getEnv("S3_REGION", "us-east-1"),
				Endpoint:  os.Getenv("S3_ENDPOINT"),
				Prefix:    getEnv("S3_PREFIX", "notes"),
				PathStyle: getEnv("S3_PATH_STYLE", "false") == "true",
			},
		},

		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@notevault.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.RateLimitUpload, err = time.ParseDuration(getEnv("RATE_LIMIT_UPLOAD", "30s")); err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_UPLOAD: %w", err)
	}
	if cfg.StatsCacheTTL, err = time.ParseDuration(getEnv("STATS_CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid STATS_CACHE_TTL: %w", err)
	}
	if cfg.MaxUploadMB, err = strconv.Atoi(getEnv("MAX_UPLOAD_MB", "10")); err != nil || cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %q", os.Getenv("MAX_UPLOAD_MB"))
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
