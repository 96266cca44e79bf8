package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dorindex/internal/config"
	"github.com/Aman-CERP/dorindex/internal/output"
	"github.com/Aman-CERP/dorindex/internal/server"
	"github.com/Aman-CERP/dorindex/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		addr      string
		withIndex bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documents over HTTP",
		Long: `Start an HTTP server that builds documents on request.

With --index, stored documents are also served from the local document
index and /v1/search is enabled. Metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, flags, addr, withIndex)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&withIndex, "index", false, "Serve the local document index")

	cmd.AddCommand(newServeStopCmd(flags))
	return cmd
}

func newServeStopCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the server running for this project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.dir)
			if err != nil {
				return err
			}
			pid := server.NewPIDFile(pidFilePath(cfg.Index.Path))
			if err := pid.Signal(syscall.SIGTERM); err != nil {
				return err
			}
			output.New(cmd.OutOrStdout()).Successf("Sent stop signal to server")
			return nil
		},
	}
}

// pidFilePath places the pid file beside the index directory.
func pidFilePath(indexPath string) string {
	return filepath.Join(filepath.Dir(indexPath), server.PIDFileName)
}

func runServe(ctx context.Context, cmd *cobra.Command, flags *rootFlags, addr string, withIndex bool) error {
	rt, err := openApp(flags.dir)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	if addr == "" {
		addr = rt.cfg.Server.Addr
	}
	opts := server.Options{
		Addr:     addr,
		Builder:  rt.builder,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   rt.logger,
	}
	if withIndex {
		idx, err := store.Open(rt.cfg.Index.Path)
		if err != nil {
			return err
		}
		defer func() { _ = idx.Close() }()
		opts.Index = idx
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	pid := server.NewPIDFile(pidFilePath(rt.cfg.Index.Path))
	if err := pid.Acquire(); err != nil {
		return err
	}
	defer func() { _ = pid.Release() }()

	out := output.New(cmd.OutOrStdout())
	out.Statusf("🌐", "Listening on http://%s", addr)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	rt.logger.Info("server_shutdown", slog.String("addr", addr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-serveErr
}
