// Package cmd provides the CLI commands for dorindex.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dorindex/internal/config"
	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/logging"
	"github.com/Aman-CERP/dorindex/internal/profiling"
	"github.com/Aman-CERP/dorindex/pkg/version"
)

// rootFlags are shared by every subcommand.
type rootFlags struct {
	dir      string
	debug    bool
	jsonErrs bool
	profile  profiling.Options
}

// NewRootCmd creates the root command for the dorindex CLI.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var (
		session        *profiling.Session
		loggingCleanup func()
	)

	cmd := &cobra.Command{
		Use:   "dorindex",
		Short: "Build search documents from repository records",
		Long: `dorindex turns digital repository records (items, collections,
admin policies) into flat search documents.

It resolves each record's related objects, runs the field indexers for the
record's kind and writes the merged document to a local index, or serves
documents on demand over HTTP.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if flags.debug {
				cfg, err := config.Load(flags.dir)
				if err != nil {
					cfg = config.NewConfig()
				}
				cleanup, err := logging.SetupDefault(cfg.LogSetup(true))
				if err != nil {
					return fmt.Errorf("failed to setup debug logging: %w", err)
				}
				loggingCleanup = cleanup
				slog.Debug("debug_logging_enabled",
					slog.String("version", version.Version),
					slog.String("command", cmd.CommandPath()))
			}
			if flags.profile.Enabled() {
				s, err := profiling.Start(flags.profile)
				if err != nil {
					return err
				}
				session = s
			}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			var err error
			if session != nil {
				err = session.Stop()
				session = nil
			}
			if loggingCleanup != nil {
				loggingCleanup()
				loggingCleanup = nil
			}
			return err
		},
	}

	cmd.SetVersionTemplate("dorindex version {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Project directory holding .dorindex.yaml")
	cmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&flags.jsonErrs, "json-errors", false, "Print errors as JSON")
	cmd.PersistentFlags().StringVar(&flags.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&flags.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&flags.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.AddCommand(newBuildCmd(flags))
	cmd.AddCommand(newIndexCmd(flags))
	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root, err)
	}
	return err
}

func printError(root *cobra.Command, err error) {
	jsonErrs, _ := root.PersistentFlags().GetBool("json-errors")
	if jsonErrs {
		if data, jerr := errors.FormatJSON(err); jerr == nil {
			fmt.Fprintln(os.Stderr, string(data))
			return
		}
	}
	fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
}
