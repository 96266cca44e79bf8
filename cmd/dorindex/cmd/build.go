package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/dorindex/internal/errors"
	"github.com/Aman-CERP/dorindex/internal/model"
	"github.com/Aman-CERP/dorindex/internal/output"
)

func newBuildCmd(flags *rootFlags) *cobra.Command {
	var files []string

	cmd := &cobra.Command{
		Use:   "build [id...]",
		Short: "Build search documents and print them as JSON",
		Long: `Build the search document for each identifier from the configured
repository, or for record files given with --file. Related objects
(collections, admin policies, tags, releases, workflow state) are always
read from the repository.`,
		Example: `  dorindex build druid:bc123df4567
  dorindex build --file records/bc123df4567.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(files) == 0 {
				return errors.New(errors.ErrCodeInvalidInput, "no identifiers or record files given", nil).
					WithSuggestion("Pass an identifier or --file record.json")
			}
			rt, err := openApp(flags.dir)
			if err != nil {
				return err
			}
			defer func() { _ = rt.Close() }()
			return runBuild(cmd.Context(), output.New(cmd.OutOrStdout()), rt, args, files)
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Record JSON file to build (repeatable)")
	return cmd
}

func runBuild(ctx context.Context, out *output.Writer, rt *app, ids, files []string) error {
	for _, path := range files {
		rec, err := readRecordFile(path)
		if err != nil {
			return err
		}
		doc, err := rt.builder.Build(ctx, rec)
		if err != nil {
			return err
		}
		if err := out.JSON(doc); err != nil {
			return err
		}
	}
	for _, id := range ids {
		doc, err := rt.builder.BuildID(ctx, id)
		if err != nil {
			return err
		}
		if err := out.JSON(doc); err != nil {
			return err
		}
	}
	return nil
}

func readRecordFile(path string) (*model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "cannot open record file", err).
			WithDetail("path", path)
	}
	defer func() { _ = f.Close() }()
	return model.LoadRecord(f)
}
