package main

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parcelops/pickup-cli/internal/model"
	"github.com/parcelops/pickup-cli/internal/pipeline"
)

var (
	exportInput string
	exportBook  string
	exportDir   string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write an audit CSV of parsed pickup addresses",
	Long: `Re-parses the input spreadsheet and writes every row to a CSV for manual
review. The file starts with a UTF-8 BOM so spreadsheet tools render the
Korean columns correctly.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rows, err := readInputRows(exportInput)
		if err != nil {
			return eris.Wrap(err, "export: load input")
		}
		if exportLimit > 0 && exportLimit < len(rows) {
			rows = rows[:exportLimit]
		}

		bookPath := exportBook
		if bookPath == "" {
			bookPath = cfg.AddressBook.Path
		}
		candidates, err := loadCandidates(bookPath, rows)
		if err != nil {
			return eris.Wrap(err, "export: load address book")
		}

		p, err := newProcessor()
		if err != nil {
			return err
		}

		results, totals, err := p.ProcessBatch(ctx, rows, candidates, pipeline.BatchOptions{Concurrency: cfg.Batch.Concurrency})
		if err != nil {
			return eris.Wrap(err, "export: process")
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.Export.ProgressDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "export: create dir %s", dir)
		}

		stamp := time.Now().Format("20060102_150405")
		path := filepath.Join(dir, "pickup_address_parsing_"+stamp+".csv")

		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", path)
		}
		defer f.Close() //nolint:errcheck

		if err := writeAuditCSV(f, results); err != nil {
			return err
		}

		zap.L().Info("wrote audit csv",
			zap.String("path", path),
			zap.Int("rows", totals.Rows),
			zap.Int("auto_safe", totals.AutoSafe),
		)
		return nil
	},
}

// writeAuditCSV writes the review CSV: a UTF-8 BOM so spreadsheet tools
// detect the encoding, a header row, then one record per row result.
// Skipped rows carry their skip reason in the diagnostics column.
func writeAuditCSV(out io.Writer, results []model.RowResult) error {
	if _, err := io.WriteString(out, "\ufeff"); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	w := csv.NewWriter(out)
	header := []string{
		"row_index", "management_no", "subject_name", "raw_address",
		"road_address", "detail_address", "annotation",
		"confidence", "auto_safe", "resolution", "diagnostics",
	}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, r := range results {
		diagnostics := strings.Join(r.Diagnostics, "; ")
		if r.Skipped {
			diagnostics = r.SkipReason
		}
		record := []string{
			strconv.Itoa(r.Row.RowIndex),
			r.Row.ManagementNo,
			r.Row.Name,
			r.Row.RawAddress,
			r.Parsed.RoadAddress,
			r.Parsed.DetailAddress,
			r.Parsed.Annotation,
			string(r.Parsed.Confidence),
			strconv.FormatBool(r.AutoSafe),
			string(r.Resolution.State),
			diagnostics,
		}
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "export: write row %d", r.Row.RowIndex)
		}
	}

	w.Flush()
	return eris.Wrap(w.Error(), "export: flush")
}

func init() {
	exportCmd.Flags().StringVar(&exportInput, "input", "", "recipient spreadsheet (default from config)")
	exportCmd.Flags().StringVar(&exportBook, "book", "", "address book CSV (default from config)")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0, "export at most N rows")
	rootCmd.AddCommand(exportCmd)
}
