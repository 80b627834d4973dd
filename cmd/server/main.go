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

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/dgeene/comment-limiter/internal/adapters/http/router"
	"github.com/dgeene/comment-limiter/internal/adapters/persist/logpersist"
	redispersist "github.com/dgeene/comment-limiter/internal/adapters/persist/redis"
	"github.com/dgeene/comment-limiter/internal/adapters/storage/memory"
	redisstorage "github.com/dgeene/comment-limiter/internal/adapters/storage/redis"
	"github.com/dgeene/comment-limiter/internal/config"
	"github.com/dgeene/comment-limiter/internal/core/domain"
	"github.com/dgeene/comment-limiter/internal/core/ports"
	"github.com/dgeene/comment-limiter/internal/core/services"
	"github.com/dgeene/comment-limiter/internal/metrics"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger = logger.Level(cfg.LogLevel)

	storage, redisClient, closeFn, err := initStorage(cfg.Storage, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init storage")
	}
	defer closeFn()

	persist, closePersist, err := initPersister(cfg, redisClient, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init persister")
	}
	defer closePersist()

	m := metrics.New()
	service, err := services.NewCommentService(storage, persist, services.Config{Rule: cfg.Limiter.Rule},
		services.WithObserver(m),
		services.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create comment service")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router.New(router.Deps{Limiter: service, Metrics: m.Handler(), Logger: logger}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Int("threshold", cfg.Limiter.Rule.Threshold).Msg("server listening")
		err := srv.ListenAndServe()
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func initStorage(cfg config.StorageConfig, logger zerolog.Logger) (ports.Storage, *goredis.Client, func(), error) {
	switch cfg.Type {
	case "memory":
		return memory.New(), nil, func() {}, nil
	case "redis":
		storage, err := redisstorage.New(redisstorage.Config{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return storage, storage.Client(), func() {
			if err := storage.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close redis storage")
			}
		}, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func initPersister(cfg config.Config, client *goredis.Client, logger zerolog.Logger) (ports.Persister[domain.Comment], func(), error) {
	handle := func(identity domain.Identity, err error) error {
		return &domain.PersistError{Identity: identity, Err: err}
	}

	switch cfg.Persist.Type {
	case "log":
		p := logpersist.New(logger)
		return ports.PersistFunc[domain.Comment](p.Persist).WithErrorHandler(handle).WithLogging(logger), func() {}, nil
	case "redis":
		closeFn := func() {}
		if client == nil {
			storage, err := redisstorage.New(redisstorage.Config{
				Addr:     cfg.Storage.Redis.Addr(),
				Password: cfg.Storage.Redis.Password,
				DB:       cfg.Storage.Redis.DB,
			})
			if err != nil {
				return nil, nil, err
			}
			client = storage.Client()
			closeFn = func() {
				if err := storage.Close(); err != nil {
					logger.Error().Err(err).Msg("failed to close redis persister client")
				}
			}
		}
		p, err := redispersist.New(client)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return ports.PersistFunc[domain.Comment](p.Persist).WithErrorHandler(handle).WithLogging(logger), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unsupported persist type: %s", cfg.Persist.Type)
	}
}
