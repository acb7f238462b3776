// @title        Marketplace Auth API
// @version      1.0
// @description  Authentication and session resolution service for the vendor/client marketplace.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vendorhub/marketplace-auth/internal/api"
	"github.com/vendorhub/marketplace-auth/internal/core/service"
	"github.com/vendorhub/marketplace-auth/internal/infrastructure/db/mongo"
	"github.com/vendorhub/marketplace-auth/internal/infrastructure/db/redis"
	"github.com/vendorhub/marketplace-auth/internal/infrastructure/identity"
	"github.com/vendorhub/marketplace-auth/internal/infrastructure/queue"
	"github.com/vendorhub/marketplace-auth/internal/pkg/config"
	"github.com/vendorhub/marketplace-auth/pkg/logger"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	directoryRepo := mongo.NewDirectoryRepository(db)
	if err := directoryRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("directory index creation failed")
	}

	sessions := redis.NewSessionStore(rdb)
	selections := redis.NewSelectionCache(rdb)

	// --- Services ---
	hosted := identity.NewHostedProvider(identity.Config{
		BaseURL:     cfg.Identity.BaseURL,
		APIKey:      cfg.Identity.APIKey,
		RedirectURL: cfg.Identity.RedirectURL,
	})

	directory := service.NewDirectoryService(directoryRepo, sessions, cfg.SessionTTL, log)
	resolver := service.NewResolverService(hosted, directory, selections, log)
	tokens := service.NewTokenManager(cfg.JWTSecret, 24*time.Hour)
	auth := service.NewAuthService(directory, hosted, resolver, selections, tokens, log)

	dispatcher := queue.NewDispatcher(0, resolver, log)
	dispatcher.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Auth:       auth,
		Directory:  directory,
		Dispatcher: dispatcher,
		Mongo:      db,
		Redis:      rdb,
		JWTSecret:  cfg.JWTSecret,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
