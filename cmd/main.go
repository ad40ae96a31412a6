package main

import (
	"batepapo/backend/internal/api"
	"batepapo/backend/internal/api/handler"
	"batepapo/backend/internal/chathub"
	"batepapo/backend/internal/chatroom"
	"batepapo/backend/internal/config"
	"batepapo/backend/internal/localization"
	"batepapo/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "batepapo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := setupDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("closing store")
		}
	}()

	texts := localization.Default().StatusTexts(cfg.StatusLang)

	// A nil *storage.Service inside the interface would not be nil.
	var broker chathub.Broker
	if store.HasBroker() {
		broker = store
	}
	hub := chathub.NewManagerService(broker, texts.Left, logger)

	room := chatroom.NewService(store, texts, logger, chatroom.WithNotifier(hub))
	supervisor := chatroom.NewSupervisor(room, cfg.ParticipantTimeout, cfg.SweepInterval, store)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	h := handler.NewHandler(room, hub, store, logger)
	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        api.NewRouter(h, logger),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		hub.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		_ = supervisor.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("driver", cfg.DBDriver).
			Bool("redis", store.HasBroker()).
			Msg("batepapo listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}

	wg.Wait()
	logger.Info().Msg("stopped")
	return nil
}

// setupDependencies opens the database and, when configured, Redis.
func setupDependencies(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage.Service, error) {
	db, err := storage.OpenDatabase(cfg.DBDriver, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = storage.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
	}

	logger.Info().Str("driver", cfg.DBDriver).Bool("redis", rdb != nil).Msg("storage ready, migrations complete")
	return storage.NewStorageService(db, rdb, logger), nil
}
