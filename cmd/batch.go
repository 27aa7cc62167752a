package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelops/pickup-cli/internal/model"
	"github.com/parcelops/pickup-cli/internal/pipeline"
)

var (
	batchInput       string
	batchBook        string
	batchLimit       int
	batchConcurrency int
	batchDryRun      bool
	batchNoStore     bool
	batchOutput      string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a recipient spreadsheet into structured addresses",
	Long: `Loads recipient rows from the input spreadsheet, parses every pickup
address, resolves recipients against the address book, and persists the
run. Rows that cannot be processed deterministically come back with
auto_safe=false and diagnostics for manual entry.

Examples:
  # Process and print results without persisting a run
  pickup-cli batch --input subjects.xlsx --dry-run

  # Full run against an address-book export
  pickup-cli batch --input subjects.xlsx --book addressbook.csv --output results.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rows, err := readInputRows(batchInput)
		if err != nil {
			return eris.Wrap(err, "batch: load input")
		}
		if batchLimit > 0 && batchLimit < len(rows) {
			rows = rows[:batchLimit]
		}

		bookPath := batchBook
		if bookPath == "" {
			bookPath = cfg.AddressBook.Path
		}
		candidates, err := loadCandidates(bookPath, rows)
		if err != nil {
			return eris.Wrap(err, "batch: load address book")
		}

		p, err := newProcessor()
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.Concurrency
		}

		results, totals, err := p.ProcessBatch(ctx, rows, candidates, pipeline.BatchOptions{Concurrency: concurrency})
		if err != nil {
			return eris.Wrap(err, "batch: process")
		}

		if batchDryRun {
			return printJSON(results)
		}

		if !batchNoStore {
			if err := persistRun(ctx, batchInputSource(), results, totals); err != nil {
				return err
			}
		}

		if batchOutput != "" {
			if err := writeJSONFile(batchOutput, results); err != nil {
				return err
			}
		}

		zap.L().Info("batch complete",
			zap.Int("rows", totals.Rows),
			zap.Int("auto_safe", totals.AutoSafe),
			zap.Int("low_confidence", totals.LowConfidence),
			zap.Int("ambiguous", totals.Ambiguous),
			zap.Int("not_found", totals.NotFound),
			zap.Int("skipped", totals.Skipped),
		)
		return nil
	},
}

func batchInputSource() string {
	if batchInput != "" {
		return batchInput
	}
	return cfg.Input.Path
}

func persistRun(ctx context.Context, source string, results []model.RowResult, totals model.RunTotals) error {
	st, err := openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "batch: open store")
	}
	defer st.Close() //nolint:errcheck

	run, err := st.CreateRun(ctx, source)
	if err != nil {
		return eris.Wrap(err, "batch: create run")
	}
	if err := st.SaveRowResults(ctx, run.ID, results); err != nil {
		if failErr := st.FailRun(ctx, run.ID, eris.ToString(err, false)); failErr != nil {
			zap.L().Warn("mark run failed", zap.String("run_id", run.ID), zap.Error(failErr))
		}
		return eris.Wrap(err, "batch: save row results")
	}
	if err := st.CompleteRun(ctx, run.ID, totals); err != nil {
		return eris.Wrap(err, "batch: complete run")
	}
	zap.L().Info("run persisted", zap.String("run_id", run.ID), zap.String("source", source))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(v), "encode output")
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal output")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write output %s", path)
	}
	zap.L().Info("wrote results", zap.String("path", path))
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "recipient spreadsheet (default from config)")
	batchCmd.Flags().StringVar(&batchBook, "book", "", "address book CSV (default from config)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "process at most N rows")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "concurrent rows (default from config)")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "print results without persisting a run")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "skip run persistence")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write row results JSON to file")
	rootCmd.AddCommand(batchCmd)
}
