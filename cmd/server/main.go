package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/handlers"
	"github.com/docvault/docvault/internal/pkg"
	"github.com/docvault/docvault/internal/repository"
	"github.com/docvault/docvault/internal/router"
	"github.com/docvault/docvault/internal/services"
	"github.com/docvault/docvault/internal/worker"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := pkg.MustLogger(pkg.LoggerConfig{
		Development: cfg.Log.Development,
		Level:       cfg.Log.Level,
	})
	defer logger.Sync()

	mongodb, err := repository.Connect(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongodb.Disconnect(); err != nil {
			logger.Error("failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	repos := repository.NewRepositories(mongodb)

	storageService, err := services.NewStorageService(&services.StorageConfig{
		Bucket:             cfg.Storage.Bucket,
		Region:             cfg.Storage.Region,
		AccessKey:          cfg.Storage.AccessKey,
		SecretKey:          cfg.Storage.SecretKey,
		Endpoint:           cfg.Storage.Endpoint,
		CredentialEndpoint: cfg.Storage.CredentialEndpoint,
		CredentialAPIKey:   cfg.Storage.CredentialAPIKey,
		CredentialMargin:   cfg.Storage.CredentialMargin,
		MaxFileSize:        cfg.Storage.MaxFileSize,
	})
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}

	analyticsService := services.NewAnalyticsService(repos.Analytics, logger)

	linkService := services.NewLinkService(
		repos.Link,
		repos.Visitor,
		repos.Document,
		analyticsService,
		storageService,
		logger,
		services.LinkServiceConfig{
			BaseURL:        cfg.Server.BaseURL,
			DefaultLinkTTL: cfg.Links.DefaultLinkTTL,
			SignedURLTTL:   cfg.Links.SignedURLTTL,
		},
	)

	documentService := services.NewDocumentService(repos.Document, linkService, storageService, logger)

	jwtManager := pkg.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)

	linkHandler := handlers.NewLinkHandler(linkService)
	documentHandler := handlers.NewDocumentHandler(documentService)

	engine := router.New(linkHandler, documentHandler, jwtManager, logger)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	cleanup := worker.NewCleanupWorker(repos.Link, repos.Visitor, logger, cfg.Cleanup.Interval, cfg.Cleanup.Retention)
	go cleanup.Run(workerCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
