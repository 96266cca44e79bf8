package cmd

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aman-CERP/dorindex/internal/builder"
	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/config"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/index"
	"github.com/Aman-CERP/dorindex/internal/metrics"
	"github.com/Aman-CERP/dorindex/internal/notify"
	"github.com/Aman-CERP/dorindex/internal/repository"
	"github.com/Aman-CERP/dorindex/internal/repository/filerepo"
	"github.com/Aman-CERP/dorindex/internal/repository/sqlrepo"
)

var registerMetrics sync.Once

// source is a repository that can also list its records.
type source interface {
	repository.Repository
	repository.Lister
}

// app holds the collaborators shared by build, index and serve.
type app struct {
	cfg     *config.Config
	repo    source
	builder *builder.Builder
	logger  *slog.Logger

	// reloader is set for directory repositories only.
	reloader index.Reloader
	close    func() error
}

// openApp loads the configuration for dir, opens the configured
// repository and creates a builder wired to the process metrics.
func openApp(dir string) (*app, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	registerMetrics.Do(func() {
		metrics.MustRegisterMetrics(prometheus.DefaultRegisterer)
	})

	rt := &app{cfg: cfg, logger: slog.Default(), close: func() error { return nil }}
	switch cfg.Repository.Backend {
	case config.BackendFile:
		repo, err := filerepo.Open(cfg.Repository.Path)
		if err != nil {
			return nil, err
		}
		rt.repo = repo
		rt.reloader = repo
	case config.BackendSQLite:
		db, err := sqlrepo.Open(cfg.Repository.Path)
		if err != nil {
			return nil, err
		}
		rt.repo = db
		rt.close = db.Close
	default:
		return nil, errors.ConfigError("unknown repository backend", nil).
			WithDetail("backend", cfg.Repository.Backend)
	}

	recorder := metrics.Recorder{}
	c := cache.New(cache.WithMaxEntries(cfg.Cache.MaxEntries), cache.WithObserver(recorder))
	b, err := builder.New(builder.Options{
		Repository: rt.repo,
		Cache:      c,
		Reporter:   notify.NewLogReporter(rt.logger, recorder),
		Logger:     rt.logger,
		Metrics:    recorder,
	})
	if err != nil {
		_ = rt.close()
		return nil, err
	}
	rt.builder = b

	rt.logger.Debug("app_opened",
		slog.String("backend", cfg.Repository.Backend),
		slog.String("repository", cfg.Repository.Path),
		slog.Int("cache_max_entries", cfg.Cache.MaxEntries))
	return rt, nil
}

// Close releases the repository.
func (rt *app) Close() error {
	return rt.close()
}
