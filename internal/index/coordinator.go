package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/Aman-CERP/dorindex/internal/cache"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/watcher"
)

// Reloader re-reads a repository from its source.
type Reloader interface {
	Reload() error
}

// CoordinatorConfig contains the collaborators of a Coordinator.
type CoordinatorConfig struct {
	// Root is the watched repository directory.
	Root string
	// Repository is reloaded before every batch.
	Repository Reloader
	// Runner rebuilds documents.
	Runner *Runner
	// Cache is reset when a related object may have changed.
	Cache *cache.Cache
	// OnConfigChange runs when the project config file changes.
	OnConfigChange func()
	Logger         *slog.Logger
}

// Coordinator applies watcher batches to the index.
//
// Edits confined to item records rebuild only those items. Anything else
// (a collection or policy record, a side file, a deletion) can change other
// documents, so the cache is reset and every record is rebuilt.
type Coordinator struct {
	cfg CoordinatorConfig
	mu  sync.Mutex
}

// NewCoordinator creates a coordinator.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Coordinator{cfg: cfg}
}

// HandleEvents processes one debounced batch.
func (c *Coordinator) HandleEvents(ctx context.Context, events []watcher.Event) (*RunnerResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(events) == 0 {
		return &RunnerResult{}, nil
	}

	if slices.ContainsFunc(events, func(e watcher.Event) bool { return e.Kind == watcher.KindConfig }) {
		c.cfg.Logger.Info("config_changed")
		if c.cfg.OnConfigChange != nil {
			c.cfg.OnConfigChange()
		}
	}

	if err := c.cfg.Repository.Reload(); err != nil {
		// The previous snapshot stays in place; the next batch retries.
		c.cfg.Logger.Warn("repository_reload_failed", slog.String("error", err.Error()))
		return nil, err
	}

	ids, full := c.affected(events)
	if full {
		if c.cfg.Cache != nil {
			c.cfg.Cache.Reset()
		}
		c.cfg.Logger.Info("full_rebuild", slog.Int("events", len(events)))
		return c.cfg.Runner.Run(ctx)
	}
	if len(ids) == 0 {
		return &RunnerResult{}, nil
	}
	c.cfg.Logger.Info("incremental_rebuild", slog.Int("records", len(ids)))
	return c.cfg.Runner.Rebuild(ctx, ids)
}

// affected returns the item ids to rebuild, or full=true when the batch
// can affect documents other than the changed records.
func (c *Coordinator) affected(events []watcher.Event) (ids []string, full bool) {
	for _, e := range events {
		switch e.Kind {
		case watcher.KindConfig:
			continue
		case watcher.KindSideFile:
			return nil, true
		}
		if e.Operation == watcher.OpDelete {
			return nil, true
		}

		rec, err := readRecord(filepath.Join(c.cfg.Root, filepath.FromSlash(e.Path)))
		if err != nil || !rec.IsItem() {
			return nil, true
		}
		ids = append(ids, rec.ExternalIdentifier)
	}
	slices.Sort(ids)
	return slices.Compact(ids), false
}

func readRecord(path string) (*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return model.LoadRecord(f)
}
