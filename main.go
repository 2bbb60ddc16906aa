package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/theBenForce/CareerCraft-sub000/repository"
	"github.com/theBenForce/CareerCraft-sub000/services"
	"github.com/theBenForce/CareerCraft-sub000/storage"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Setup structured logging with JSON format
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := services.LoadConfig()

	store, gormDB, err := openStore(config)
	if err != nil {
		slog.Error("Failed to initialize persistence", "error", err)
		os.Exit(1)
	}

	uploader, err := buildUploader(config)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	server := services.NewServer(config, store, gormDB, uploader)
	server.Start()
}

// openStore picks the persistence backend from configuration. The choice
// is made once here; everything downstream sees only *repository.Store.
func openStore(config *services.Config) (*repository.Store, *gorm.DB, error) {
	if config.Database.UseDocumentStore {
		db, err := gorm.Open(sqlite.Open(config.Database.DocumentPath), &gorm.Config{})
		if err != nil {
			return nil, nil, err
		}
		if err := repository.MigrateDocuments(db); err != nil {
			return nil, nil, err
		}
		slog.Info("Using document store", "path", config.Database.DocumentPath)
		return repository.NewDocStore(repository.NewDocumentStore(db)), db, nil
	}

	db, err := gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := repository.Migrate(db); err != nil {
		return nil, nil, err
	}
	slog.Info("Connected to database")
	return repository.NewGormStore(db), db, nil
}

// buildUploader assembles the attachment storage backend. When S3 is
// selected, local disk remains as a fallback target.
func buildUploader(config *services.Config) (storage.Uploader, error) {
	local, err := storage.NewLocal(config.Storage.LocalDir, config.Storage.PublicBaseURL)
	if err != nil {
		return nil, err
	}

	if config.Storage.Backend != "s3" {
		slog.Info("Using local file storage", "dir", config.Storage.LocalDir)
		return local, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s3, err := storage.NewS3(ctx, storage.S3Config{
		Endpoint:  config.Storage.S3Endpoint,
		Bucket:    config.Storage.S3Bucket,
		AccessKey: config.Storage.S3AccessKey,
		SecretKey: config.Storage.S3SecretKey,
		UseSSL:    config.Storage.S3UseSSL,
	})
	if err != nil {
		slog.Warn("Object store unavailable, using local storage", "error", err)
		return local, nil
	}

	slog.Info("Using object storage with local fallback", "bucket", config.Storage.S3Bucket)
	return storage.NewFallback(s3, local), nil
}
