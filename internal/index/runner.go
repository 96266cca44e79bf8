// Package index builds repository records into a document index: full runs,
// incremental updates from watcher events, and consistency repair.
package index

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/repository"
	"github.com/Aman-CERP/dorindex/pkg/indexer"
)

// DefaultBatchSize is the number of documents written to the sink at once.
const DefaultBatchSize = 500

// Builder builds the document for one record.
type Builder interface {
	BuildID(ctx context.Context, id string) (indexer.Document, error)
}

// Sink stores documents keyed by their "id" field.
type Sink interface {
	Put(ctx context.Context, docs ...indexer.Document) error
	Delete(ctx context.Context, ids ...string) error
	AllIDs(ctx context.Context) ([]string, error)
}

// StoreObserver is told how many documents were written.
type StoreObserver interface {
	DocumentsStored(n int)
}

// RunnerConfig tunes a Runner.
type RunnerConfig struct {
	// Workers bounds concurrent builds. Default: 1.
	Workers int
	// BatchSize bounds one sink write. Default: DefaultBatchSize.
	BatchSize int
	// Retry applies to retryable failures of a single build.
	Retry errors.RetryConfig
}

// RunnerDependencies contains the injected dependencies for Runner.
type RunnerDependencies struct {
	Builder  Builder
	Records  repository.Lister
	Sink     Sink
	Logger   *slog.Logger
	Observer StoreObserver
	// Progress is called after every record with the running count.
	Progress func(done, total int)
}

// RecordFailure is a record whose document could not be built.
type RecordFailure struct {
	ID  string
	Err error
}

// RunnerResult contains the outcome of a run.
type RunnerResult struct {
	Records  int
	Indexed  int
	Removed  int
	Failed   []RecordFailure
	Duration time.Duration
}

// Runner builds records concurrently and writes them to a sink. Records are
// independent; a failed record is reported and does not stop the run.
type Runner struct {
	cfg  RunnerConfig
	deps RunnerDependencies
}

// NewRunner validates deps and applies config defaults.
func NewRunner(cfg RunnerConfig, deps RunnerDependencies) (*Runner, error) {
	if deps.Builder == nil {
		return nil, errors.ConfigError("runner requires a builder", nil)
	}
	if deps.Records == nil {
		return nil, errors.ConfigError("runner requires a record lister", nil)
	}
	if deps.Sink == nil {
		return nil, errors.ConfigError("runner requires a sink", nil)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Runner{cfg: cfg, deps: deps}, nil
}

// Run rebuilds every record in the repository and removes documents whose
// record no longer exists.
func (r *Runner) Run(ctx context.Context) (*RunnerResult, error) {
	start := time.Now()

	ids, err := r.deps.Records.IDs(ctx)
	if err != nil {
		return nil, err
	}

	result, err := r.build(ctx, ids)
	if err != nil {
		return nil, err
	}

	removed, err := r.prune(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.Removed = removed
	result.Duration = time.Since(start)

	r.deps.Logger.Info("index_run_completed",
		slog.Int("records", result.Records),
		slog.Int("indexed", result.Indexed),
		slog.Int("failed", len(result.Failed)),
		slog.Int("removed", result.Removed),
		slog.Int64("duration_ms", result.Duration.Milliseconds()))
	return result, nil
}

// Rebuild builds only ids.
func (r *Runner) Rebuild(ctx context.Context, ids []string) (*RunnerResult, error) {
	start := time.Now()
	result, err := r.build(ctx, ids)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (r *Runner) build(ctx context.Context, ids []string) (*RunnerResult, error) {
	result := &RunnerResult{Records: len(ids)}
	if len(ids) == 0 {
		return result, nil
	}

	var (
		mu   sync.Mutex
		docs = make([]indexer.Document, 0, len(ids))
		done atomic.Int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, id := range ids {
		g.Go(func() error {
			doc, err := errors.Retry(gctx, r.cfg.Retry, func(ctx context.Context) (indexer.Document, error) {
				return r.deps.Builder.BuildID(ctx, id)
			})

			mu.Lock()
			if err != nil {
				result.Failed = append(result.Failed, RecordFailure{ID: id, Err: err})
			} else {
				docs = append(docs, doc)
			}
			mu.Unlock()

			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				r.deps.Logger.Warn("record_skipped",
					append([]any{slog.String("record_id", id)}, errors.LogAttrs(err)...)...)
			}
			if r.deps.Progress != nil {
				r.deps.Progress(int(done.Add(1)), len(ids))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(result.Failed, func(a, b RecordFailure) int {
		return strings.Compare(a.ID, b.ID)
	})

	for batch := range slices.Chunk(docs, r.cfg.BatchSize) {
		if err := r.deps.Sink.Put(ctx, batch...); err != nil {
			return nil, err
		}
		if r.deps.Observer != nil {
			r.deps.Observer.DocumentsStored(len(batch))
		}
		result.Indexed += len(batch)
	}
	return result, nil
}

// prune deletes documents not in keep and returns how many were removed.
func (r *Runner) prune(ctx context.Context, keep []string) (int, error) {
	stale, err := orphans(ctx, r.deps.Sink, keep)
	if err != nil || len(stale) == 0 {
		return 0, err
	}
	if err := r.deps.Sink.Delete(ctx, stale...); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// orphans returns the sink ids missing from keep, sorted.
func orphans(ctx context.Context, sink Sink, keep []string) ([]string, error) {
	stored, err := sink.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		known[id] = struct{}{}
	}
	var out []string
	for _, id := range stored {
		if _, ok := known[id]; !ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out, nil
}
