// Package server boots the process-wide dependencies (config, logger, store
// connection) and runs the HTTP and gRPC listeners until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/shashiranjanraj/salesdash/app/repositories"
	"github.com/shashiranjanraj/salesdash/config"
	"github.com/shashiranjanraj/salesdash/pkg/database"
	apigrpc "github.com/shashiranjanraj/salesdash/pkg/grpc"
	"github.com/shashiranjanraj/salesdash/pkg/logger"
	"github.com/shashiranjanraj/salesdash/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

// App holds what every command needs once booted.
type App struct {
	Conn *database.Conn
	Repo repositories.ProductRepository

	closers []func(context.Context) error
}

// Boot loads configuration, installs the logger and opens the product
// store.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &App{}
	setupLogger(a)

	conn, err := database.Connect(ctx, database.OptionsFromConfig())
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.Conn = conn
	a.closers = append(a.closers, conn.Close)

	repo, err := repositories.New(conn)
	if err != nil {
		a.Close(context.Background())
		return nil, err
	}
	a.Repo = repo

	logger.Info("store connected", "driver", conn.Driver)
	return a, nil
}

func setupLogger(a *App) {
	uri := config.LogMongoURI()
	if uri == "" {
		logger.Setup(config.AppEnv(), os.Stdout)
		return
	}

	h, err := logger.NewMongoHandler(context.Background(), logger.MongoSinkOptions{
		URI:        uri,
		Database:   config.MongoDatabase(),
		Collection: "logs",
		Level:      slog.LevelInfo,
		TTL:        config.LogMongoTTL(),
	})
	if err != nil {
		logger.Setup(config.AppEnv(), os.Stdout)
		logger.Warn("mongo log sink disabled", "error", err)
		return
	}
	logger.Setup(config.AppEnv(), os.Stdout, h)
	a.closers = append(a.closers, func(context.Context) error { h.Close(); return nil })
}

// Close releases everything Boot opened, last opened first.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

// Limiter returns the rate limiter for RATE_LIMIT requests per window:
// shared through Redis when REDIS_ADDR is set and reachable, per-process
// otherwise. Nil when RATE_LIMIT is 0.
func (a *App) Limiter(ctx context.Context, window time.Duration) middleware.Limiter {
	limit := config.RateLimit()
	if limit == 0 {
		return nil
	}

	addr := config.RedisAddr()
	if addr == "" {
		return middleware.NewMemoryLimiter(limit, window)
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: config.RedisPassword()})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Warn("redis unreachable, rate limiting per process", "addr", addr, "error", err)
		return middleware.NewMemoryLimiter(limit, window)
	}

	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return middleware.NewRedisLimiter(client, limit, window)
}

// Serve runs handler on :port, plus the gRPC health server when grpcPort is
// set, until ctx is cancelled. Shutdown drains in-flight requests for up to
// ten seconds.
func Serve(ctx context.Context, port string, handler http.Handler, grpcPort string, check apigrpc.Checker) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var err error
	var grpcSrv *grpc.Server
	if grpcPort != "" {
		if grpcSrv, err = apigrpc.Start(grpcPort, check); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
		logger.Error("HTTP server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	apigrpc.Stop(grpcSrv)
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = fmt.Errorf("http shutdown: %w", shutdownErr)
	}
	return err
}
