package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dvloznov/spend-insights/internal/logger"
	"github.com/dvloznov/spend-insights/internal/pipeline"
	"github.com/dvloznov/spend-insights/internal/spreadsheet"
	"github.com/dvloznov/spend-insights/internal/storage"
)

func analyzeCmd() *cobra.Command {
	var (
		outDir        string
		sheet         string
		skipNarrative bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <workbook.xlsx | gs://bucket/object.xlsx>",
		Short: "Analyze a transaction workbook and write the report",
		Long: `Run the full analysis on a workbook and print the result summary as JSON.

The report is written to --out-dir, or to REPORT_BUCKET when one is configured
and --out-dir is not given. Workbooks can be read from Cloud Storage with a
gs:// URI.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)
			source := args[0]

			if err := spreadsheet.CheckExtension(storage.BaseName(source)); err != nil {
				return err
			}

			if storage.IsGCSURI(source) {
				data, err := storage.FetchObject(ctx, source, storage.ClientOptions(cfg.StorageCredentialsFile)...)
				if err != nil {
					return fmt.Errorf("fetch %s: %w", source, err)
				}
				tmp, err := os.MkdirTemp("", "spend-insights-")
				if err != nil {
					return fmt.Errorf("create temp dir: %w", err)
				}
				defer os.RemoveAll(tmp)

				local := filepath.Join(tmp, storage.SafeName(storage.BaseName(source)))
				if err := os.WriteFile(local, data, 0o600); err != nil {
					return fmt.Errorf("write %s: %w", local, err)
				}
				log.Info().Str("uri", source).Int("bytes", len(data)).Msg("Fetched workbook from GCS")
				source = local
			}

			if sheet != "" {
				cfg.InputSheet = sheet
			}
			opts, err := cfg.AnalyzerOptions()
			if err != nil {
				return err
			}
			if outDir != "" {
				opts.Store = storage.NewLocalStore(outDir)
			}
			if skipNarrative {
				opts.Model = nil
			}

			result, err := pipeline.NewAnalyzer(opts).Analyze(ctx, source)
			if err != nil {
				printJSON(cmd, pipeline.FailureResult(err))
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&outDir, "out-dir", "o", "", "directory for the report (default UPLOAD_DIR or REPORT_BUCKET)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet holding the transactions; overrides INPUT_SHEET")
	cmd.Flags().BoolVar(&skipNarrative, "skip-narrative", false, "do not call the model for AI insights")

	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
