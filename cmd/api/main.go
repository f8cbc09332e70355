package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/abilov/sanctuarypics/internal/config"
	"github.com/abilov/sanctuarypics/internal/logger"
	"github.com/abilov/sanctuarypics/internal/photo"
	"github.com/abilov/sanctuarypics/internal/server"
	"github.com/abilov/sanctuarypics/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := server.Dependencies{Config: cfg, Logger: logg}

	var metadataStore photo.MetadataStore
	switch cfg.Stores.MetadataBackend {
	case config.MetadataBackendPostgres:
		pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logg.Fatal("connect postgres", zap.Error(err))
		}
		defer pool.Close()
		deps.DB = pool
		metadataStore = photo.NewPostgresRepository(pool)
	default:
		db, err := storage.NewBadgerDB(cfg.Stores.BadgerDir)
		if err != nil {
			logg.Fatal("open badger", zap.Error(err))
		}
		defer db.Close()
		deps.BadgerDB = db
		metadataStore = photo.NewBadgerRepository(db)
	}

	var blobStore photo.BlobStore
	switch cfg.Stores.BlobBackend {
	case config.BlobBackendMinIO:
		minioClient, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			logg.Fatal("connect minio", zap.Error(err))
		}
		if err := storage.EnsureBucket(ctx, minioClient, cfg.MinIO.Bucket, cfg.MinIO.Region); err != nil {
			logg.Fatal("ensure bucket", zap.Error(err))
		}
		deps.ObjectStore = minioClient
		blobStore = photo.NewMinIOStore(minioClient, cfg.MinIO.Bucket)
	default:
		if err := storage.EnsureUploadDir(cfg.Stores.UploadDir); err != nil {
			logg.Fatal("ensure upload directory", zap.Error(err))
		}
		blobStore = photo.NewDiskStore(cfg.Stores.UploadDir)
	}

	deps.PhotoService = photo.NewService(metadataStore, blobStore, logg)

	router := server.NewRouter(deps)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logg.Info("sanctuarypics API listening",
			zap.String("address", cfg.Server.Address()),
			zap.String("metadata_backend", cfg.Stores.MetadataBackend),
			zap.String("blob_backend", cfg.Stores.BlobBackend))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
