package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/index"
	"github.com/Aman-CERP/dorindex/internal/metrics"
	"github.com/Aman-CERP/dorindex/internal/output"
	"github.com/Aman-CERP/dorindex/internal/profiling"
	"github.com/Aman-CERP/dorindex/internal/store"
	"github.com/Aman-CERP/dorindex/internal/watcher"
)

type indexOptions struct {
	watch   bool
	force   bool
	workers int
}

func newIndexCmd(flags *rootFlags) *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build every record into the local document index",
		Long: `Build the search document for every record in the repository and
store it in the document index. Documents of records that no longer exist
are removed.

Records that fail to build are reported and skipped. Use --watch to keep
the index current while records and side files change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runIndex(ctx, cmd, flags, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep running and reindex on changes")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Clear the index before building")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent builds (default from config)")

	cmd.AddCommand(newIndexCheckCmd(flags))
	return cmd
}

// indexSession is an opened, locked document index with a runner over it.
type indexSession struct {
	app    *app
	lock   *store.Lock
	store  *store.DocumentIndex
	runner *index.Runner
}

func openIndexSession(dir string, opts indexOptions, progress func(done, total int)) (*indexSession, error) {
	rt, err := openApp(dir)
	if err != nil {
		return nil, err
	}
	s := &indexSession{app: rt, lock: store.NewLock(rt.cfg.Index.Path)}
	if err := s.lock.TryLock(); err != nil {
		_ = rt.Close()
		return nil, err
	}
	if opts.force {
		if err := os.RemoveAll(rt.cfg.Index.Path); err != nil {
			s.Close()
			return nil, errors.InternalError("clear index", err).WithDetail("path", rt.cfg.Index.Path)
		}
		rt.logger.Info("index_force_clear", slog.String("path", rt.cfg.Index.Path))
	}
	if s.store, err = store.Open(rt.cfg.Index.Path); err != nil {
		s.Close()
		return nil, err
	}

	workers := rt.cfg.Index.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}
	retry := errors.DefaultRetryConfig()
	retry.MaxRetries = rt.cfg.Index.Retries

	s.runner, err = index.NewRunner(index.RunnerConfig{Workers: workers, Retry: retry}, index.RunnerDependencies{
		Builder:  rt.builder,
		Records:  rt.repo,
		Sink:     s.store,
		Logger:   rt.logger,
		Observer: metrics.Recorder{},
		Progress: progress,
	})
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the index, its lock and the repository.
func (s *indexSession) Close() {
	if s.store != nil {
		_ = s.store.Close()
	}
	_ = s.lock.Unlock()
	_ = s.app.Close()
}

func runIndex(ctx context.Context, cmd *cobra.Command, flags *rootFlags, opts indexOptions) error {
	out := output.New(cmd.OutOrStdout())
	var mu sync.Mutex
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		out.Progress(done, total, "Building documents")
	}

	s, err := openIndexSession(flags.dir, opts, progress)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.runner.Run(ctx)
	if err != nil {
		return err
	}
	reportRun(out, res)
	s.app.logger.Debug("index_memory", slog.String("heap_in_use", profiling.FormatBytes(profiling.HeapInUse())))

	if !opts.watch {
		return nil
	}
	return watchRepository(ctx, out, s)
}

func reportRun(out *output.Writer, res *index.RunnerResult) {
	out.Successf("Indexed %d of %d records in %s", res.Indexed, res.Records, res.Duration.Round(time.Millisecond))
	if res.Removed > 0 {
		out.Statusf("🧹", "Removed %d stale documents", res.Removed)
	}
	for _, f := range res.Failed {
		out.Warningf("%s: %v", f.ID, f.Err)
	}
}

func watchRepository(ctx context.Context, out *output.Writer, s *indexSession) error {
	rt := s.app
	if rt.reloader == nil {
		return errors.ConfigError("--watch requires the file repository backend", nil).
			WithDetail("backend", rt.cfg.Repository.Backend)
	}

	w, err := watcher.New(watcher.Options{DebounceWindow: rt.cfg.WatchDebounce()})
	if err != nil {
		return err
	}
	coord := index.NewCoordinator(index.CoordinatorConfig{
		Root:       rt.cfg.Repository.Path,
		Repository: rt.reloader,
		Runner:     s.runner,
		Cache:      rt.builder.Cache(),
		OnConfigChange: func() {
			out.Warningf("Configuration changed; restart to apply it")
		},
		Logger: rt.logger,
	})

	watchErr := make(chan error, 1)
	go func() { watchErr <- w.Start(ctx, rt.cfg.Repository.Path) }()
	out.Statusf("👀", "Watching %s (%s)", rt.cfg.Repository.Path, w.Mode())

	events, errs := w.Events(), w.Errors()
	for {
		select {
		case batch, ok := <-events:
			if !ok {
				return waitWatcher(ctx, watchErr)
			}
			res, err := coord.HandleEvents(ctx, batch)
			if err != nil {
				if ctx.Err() != nil {
					return waitWatcher(ctx, watchErr)
				}
				out.Warningf("Reindex failed: %v", err)
				continue
			}
			reportRun(out, res)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			rt.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

// waitWatcher returns the watcher's exit error, treating cancellation as a
// clean stop.
func waitWatcher(ctx context.Context, watchErr <-chan error) error {
	err := <-watchErr
	if err == nil || ctx.Err() != nil {
		return nil
	}
	return fmt.Errorf("watcher stopped: %w", err)
}

func newIndexCheckCmd(flags *rootFlags) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Compare the index with the repository",
		Long: `Report documents whose record no longer exists and records that have
no document. With --repair, missing documents are built and orphans removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			s, err := openIndexSession(flags.dir, indexOptions{}, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			checker := index.NewConsistencyChecker(s.runner)
			res, err := checker.Check(cmd.Context())
			if err != nil {
				return err
			}
			if res.Consistent() {
				out.Successf("Index consistent (%d records)", res.Checked)
				return nil
			}
			out.Warningf("%d orphaned documents, %d missing documents", len(res.Orphans), len(res.Missing))
			if !repair {
				return errors.New(errors.ErrCodeIndexFailed, "index is inconsistent", nil).
					WithSuggestion("Run 'dorindex index check --repair'")
			}
			run, err := checker.Repair(cmd.Context(), res)
			if err != nil {
				return err
			}
			reportRun(out, run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "Fix inconsistencies")
	return cmd
}
