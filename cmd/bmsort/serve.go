package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bmsort/internal/api"
	"github.com/nikbrunner/bmsort/internal/sse"
	"github.com/nikbrunner/bmsort/internal/storage"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP run-control API",
		Long: `Starts the HTTP API: start and stop organize runs, follow their progress
over Server-Sent Events, add and check single bookmarks.

When server.token is set every /api request needs
"Authorization: Bearer <token>".`,
		Example: `  bmsort serve --port 9000
  curl -N localhost:9000/api/events
  curl -X POST localhost:9000/api/organize`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := flags.open(logStdoutJSON)
			if err != nil {
				return err
			}
			defer a.Close()
			if port != 0 {
				a.cfg.Server.Port = port
			}
			return serve(cmd.Context(), a)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default server.port, 8787)")

	return cmd
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger
	ctl := a.org.Controller()

	broker := sse.NewBroker(logger)
	defer broker.Close()
	detach := broker.Attach(ctl)
	defer detach()

	addr := a.cfg.Server.Address()
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(a.org, a.cfg.Server.Token, broker, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never end on their own.
	httpServer.RegisterOnShutdown(broker.Close)

	logger.Info("Server starting...",
		slog.String("http_address", addr),
		slog.String("storage", a.store.Path()),
		slog.Bool("auth", a.cfg.Server.Token != ""))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the store when another process changes it while idle.
	g.Go(func() error {
		path := a.store.Path()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
			return nil
		}
		err := storage.Watch(gCtx, path, logger, func() {
			if ctl.IsActive() || a.backend.Dirty() {
				logger.Debug("store changed during a run, reload skipped")
				return
			}
			if err := a.backend.Reload(); err != nil {
				logger.Error("reload failed", slog.String("error", err.Error()))
				return
			}
			logger.Info("store reloaded", slog.String("path", path))
		})
		if err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		// A blocking POST /api/organize returns once its run has stopped.
		ctl.RequestStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server stopped")
	return nil
}
