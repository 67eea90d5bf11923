package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"anoa.com/notevault/internal/bootstrap"
	"anoa.com/notevault/internal/config"
	"anoa.com/notevault/internal/server"
	"anoa.com/notevault/pkg/database"
	"anoa.com/notevault/pkg/logger"
	"anoa.com/notevault/pkg/storage"
	"github.com/meilisearch/meilisearch-go"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLog.Fatal("failed to connect database", "error", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		appLog.Fatal("migration failed", "error", err)
	}
	if err := bootstrap.SeedSettings(db); err != nil {
		appLog.Fatal("failed to seed settings", "error", err)
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedAdminUser(db, appLog, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			appLog.Fatal("failed to seed admin user", "error", err)
		}
	}

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		appLog.Warn("redis unavailable, continuing without cache and live notifications", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		appLog.Fatal("failed to initialize storage", "error", err)
	}

	var meili meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		meili = meilisearch.New(meiliHost(cfg.MeiliSearchHost), meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}

	srv, err := server.NewServer(cfg, server.Deps{
		DB:     db,
		Redis:  redisClient,
		Meili:  meili,
		Blobs:  blobs,
		Logger: appLog,
	})
	if err != nil {
		appLog.Fatal("failed to build server", "error", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLog.Fatal("server exited with error", "error", err)
		}
	case <-ctx.Done():
		appLog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("graceful shutdown failed", "error", err)
	}
}

// meiliHost accepts a bare hostname (as set by container links) as well as a
// full URL.
func meiliHost(host string) string {
	if !strings.HasPrefix(host, "http") {
		return "http://" + host + ":7700"
	}
	return host
}
