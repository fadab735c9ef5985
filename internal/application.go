package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opengambit/chessrelay-backend/internal/config"
	"github.com/opengambit/chessrelay-backend/internal/repository"
	"github.com/opengambit/chessrelay-backend/internal/repository/storage"
	"github.com/opengambit/chessrelay-backend/internal/usecase"
	"github.com/opengambit/chessrelay-backend/transport/rest"
	"github.com/opengambit/chessrelay-backend/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	sessionRepo, cleanup, err := newSessionRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := websocket.NewRegistry(logger)
	matchmaker := usecase.NewMatchmaker(logger, registry, sessionRepo)
	relay := usecase.NewRelay(logger, registry, sessionRepo)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := rest.Start(ctx, conf.HTTPPort, matchmaker, sessionRepo); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, conf.AllowedOrigin, matchmaker, relay, registry)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}

// newSessionRepository picks the session store per config: process
// memory by default, redis when an operator wants live state to survive
// a backend restart window.
func newSessionRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.SessionRepository, func(), error) {
	if conf.Storage.Backend != config.StorageRedis {
		return repository.NewMemorySessionRepository(), func() {}, nil
	}

	redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	cleanup := func() {
		if closeErr := redisStorage.Close(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}

	ttl := time.Duration(conf.Storage.SessionTTLSeconds) * time.Second

	return repository.NewSessionRepository(redisStorage.Connection, ttl), cleanup, nil
}
