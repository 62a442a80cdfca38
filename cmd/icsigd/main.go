// Command icsigd runs the identity-provider service as a standalone HTTP
// server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/forestrie/ic-siglog/cert"
	"github.com/forestrie/ic-siglog/directory"
	"github.com/forestrie/ic-siglog/internal/config"
	"github.com/forestrie/ic-siglog/store"
	"github.com/forestrie/ic-siglog/transport"
)

var version = "dev"

func main() {
	os.Exit(run0())
}

func run0() int {
	_ = godotenv.Load()

	level := parseLogLevel(os.Getenv("ICSIGD_LOG_LEVEL"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("icsigd starting", "version", version, "port", cfg.Port)

	fileStore, err := store.NewFileStore(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}

	platform, err := cert.NewMockPlatform()
	if err != nil {
		return fmt.Errorf("platform: %w", err)
	}

	service := directory.NewSized(platform, logger, cfg.ExpectedUsers)
	if err := restoreSnapshot(service, fileStore, logger); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	assets := directory.NewAssets(nil)
	server := transport.NewServer(service, assets)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := snapshotNow(service, fileStore); err != nil {
		logger.Error("snapshot on shutdown failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// restoreSnapshot implements the post-upgrade hook: if a prior snapshot
// exists, the directory map is restored from it. The signature map starts
// empty regardless, since directory.NewSized already initialized it that way.
func restoreSnapshot(service *directory.Service, s store.Store, logger *slog.Logger) error {
	data, ok, err := s.Load()
	if err != nil {
		return directory.ErrPersistenceFailure
	}
	if !ok {
		return nil
	}
	users, err := directory.DecodeSnapshot(data)
	if err != nil {
		return directory.ErrPersistenceFailure
	}
	service.Restore(users)
	logger.Info("restored directory snapshot", "users", len(users))
	return nil
}

// snapshotNow implements the pre-upgrade hook: only the directory map is
// persisted, never the signature map.
func snapshotNow(service *directory.Service, s store.Store) error {
	data, err := directory.EncodeSnapshot(service.Snapshot())
	if err != nil {
		return directory.ErrPersistenceFailure
	}
	if err := s.Save(data); err != nil {
		return directory.ErrPersistenceFailure
	}
	return nil
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
