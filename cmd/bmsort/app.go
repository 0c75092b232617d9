package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nikbrunner/bmsort/internal/ai"
	"github.com/nikbrunner/bmsort/internal/apperr"
	"github.com/nikbrunner/bmsort/internal/bookmarks"
	"github.com/nikbrunner/bmsort/internal/organizer"
	"github.com/nikbrunner/bmsort/internal/storage"
)

const retryDelay = 2 * time.Second

type logSink int

const (
	logStderr     logSink = iota // text on stderr
	logStdoutJSON                // JSON on stdout, for serve
	logFile                      // text in the data dir, while a full-screen view owns the terminal
)

// app is everything a command needs, wired from the config file.
type app struct {
	cfg     *storage.Config
	logger  *slog.Logger
	store   storage.Storage
	backend *bookmarks.StoreBackend
	org     *organizer.Organizer

	closers []io.Closer
}

func (f *globalFlags) open(sink logSink) (*app, error) {
	cfgPath := f.configPath
	if cfgPath == "" {
		var err error
		if cfgPath, err = storage.DefaultConfigFilePath(); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
		}
	}
	cfg, err := storage.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfig, err)
	}

	a := &app{cfg: cfg}

	level := cfg.Level()
	if f.debug {
		level = slog.LevelDebug
	}
	if a.logger, err = a.newLogger(sink, level); err != nil {
		return nil, err
	}
	slog.SetDefault(a.logger)

	a.logger.Debug("configuration loaded",
		slog.String("config", cfgPath),
		slog.String("provider", cfg.AI.Provider),
		slog.String("model", cfg.AI.ModelName()),
		slog.String("log_level", level.String()))

	st, err := storage.OpenStorage(cfg.Storage.Path)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a.store = st
	if c, ok := st.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	if a.backend, err = bookmarks.OpenStoreBackend(st); err != nil {
		a.Close()
		return nil, err
	}

	client := ai.NewClient(cfg.AI, ai.WithLogger(a.logger))
	a.org = organizer.New(organizer.Params{
		Backend:    a.backend,
		Classifier: client,
		Logger:     a.logger,
		Retries:    cfg.Organize.BatchRetries,
		RetryDelay: retryDelay,
		RootFolder: cfg.Organize.RootFolder,
	})
	return a, nil
}

func (a *app) newLogger(sink logSink, level slog.Level) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch sink {
	case logStdoutJSON:
		return slog.New(slog.NewJSONHandler(os.Stdout, opts)), nil
	case logFile:
		dir, err := storage.DefaultDataDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		f, err := os.OpenFile(filepath.Join(dir, "bmsort.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		return slog.New(slog.NewTextHandler(f, opts)), nil
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
}

// Close releases the storage and the log file.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}
