// Package app wires configuration, logging, storage and the repository into
// one handle for the command line.
package app

import (
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"

	"planner/internal/agenda"
	"planner/internal/config"
	"planner/internal/errors"
	"planner/internal/export"
	"planner/internal/repository"
	"planner/internal/slogutil"
	"planner/internal/storage"
	"planner/internal/storage/badgerstore"
	"planner/internal/storage/memstore"
	"planner/internal/task"
)

// OpenStore opens the backend selected by cfg.Storage.
func OpenStore(cfg *config.Config, home string, logger *slog.Logger) (storage.Store, error) {
	path := cfg.StoragePath(home)

	switch cfg.Storage.Backend {
	case config.BackendSQLite, "":
		s, err := storage.OpenTaskStore(path, logger, storage.WithSyncWrites(cfg.Storage.SyncWrites))
		if err != nil {
			return nil, errors.New(errors.StorageFailure, "open sqlite store", err).
				WithDetails(map[string]string{"path": path})
		}
		return s, nil
	case config.BackendBadger:
		bcfg := badgerstore.DefaultConfig(path)
		bcfg.SyncWrites = cfg.Storage.SyncWrites
		bcfg.GCInterval = cfg.GCInterval()
		bcfg.Logger = logger
		s, err := badgerstore.Open(bcfg)
		if err != nil {
			return nil, errors.New(errors.StorageFailure, "open badger store", err).
				WithDetails(map[string]string{"path": path})
		}
		return s, nil
	case config.BackendMemory:
		logger.Warn("Using in-memory store, tasks are lost on exit")
		return memstore.New(), nil
	default:
		return nil, errors.New(errors.ConfigInvalid, fmt.Sprintf("unknown storage backend %q", cfg.Storage.Backend), nil)
	}
}

// Options controls Open.
type Options struct {
	// Home is the planner home directory, already resolved.
	Home string
	// Console receives log output; nil means stderr.
	Console io.Writer
	// ConsoleLevel overrides the configured level on the console.
	ConsoleLevel *slog.Level
	// Config, when set, is used instead of loading <home>/config.json.
	Config *config.Config
}

// App is an opened planner.
type App struct {
	Home     string
	Config   *config.Config
	Logs     *slogutil.LoggerFactory
	Store    storage.Store
	Repo     *repository.Repository
	Agenda   *agenda.Agenda
	Exporter *export.Exporter
}

// Open loads configuration, starts logging and opens the store.
func Open(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.LoadConfig(opts.Home)
		if err != nil {
			return nil, errors.New(errors.ConfigInvalid, "load configuration", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		var ce *config.ConfigError
		if stderrors.As(err, &ce) {
			return nil, errors.New(errors.ConfigInvalid, "invalid configuration", err).
				WithDetails(map[string]string{"field": ce.Field})
		}
		return nil, errors.New(errors.ConfigInvalid, "invalid configuration", err)
	}

	logs := slogutil.NewLoggerFactory(slogutil.Options{
		Level:        slogutil.LevelFromString(cfg.Logging.Level),
		Format:       cfg.Logging.Format,
		Console:      opts.Console,
		ConsoleLevel: opts.ConsoleLevel,
		File:         cfg.LogPath(opts.Home),
		MaxSize:      cfg.Logging.MaxSize,
		MaxBackups:   cfg.Logging.MaxBackups,
	})

	store, err := OpenStore(cfg, opts.Home, logs.For("storage"))
	if err != nil {
		_ = logs.Close()
		return nil, err
	}

	repo := repository.New(store, repository.WithLogger(logs.For("repository")))
	exporter := export.NewExporter(store, logs.For("export"))
	exporter.OnImport(func(t *task.Task, replaced bool) {
		kind := repository.Created
		if replaced {
			kind = repository.Updated
		}
		repo.Publish(repository.Change{Kind: kind, TaskID: t.ID, Task: t})
	})
	return &App{
		Home:     opts.Home,
		Config:   cfg,
		Logs:     logs,
		Store:    store,
		Repo:     repo,
		Agenda:   agenda.New(repo, agenda.SettingsFromConfig(cfg), agenda.WithLogger(logs.For("agenda"))),
		Exporter: exporter,
	}, nil
}

// Close stops pending agenda work, then closes the store and log files.
func (a *App) Close() error {
	a.Agenda.Close()
	storeErr := a.Store.Close()
	logErr := a.Logs.Close()
	if storeErr != nil {
		return errors.New(errors.StorageFailure, "close store", storeErr)
	}
	return logErr
}
