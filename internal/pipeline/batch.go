package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/parcelops/pickup-cli/internal/model"
)

// BatchOptions tunes concurrent batch processing.
type BatchOptions struct {
	Concurrency int
}

// ProcessBatch runs every row through ProcessRow. Rows are independent —
// each depends only on its own fields and the shared read-only candidate
// list — so they fan out across a bounded errgroup. Input-invalid rows
// become skipped results; they never abort the batch.
//
// Results come back in input order, one per row, each carrying its own
// diagnostics so nothing interleaves across rows.
func (p *Processor) ProcessBatch(ctx context.Context, rows []model.RecipientRow, candidates []model.Candidate, opts BatchOptions) ([]model.RowResult, model.RunTotals, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	results := make([]model.RowResult, len(rows))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, row := range rows {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "batch: cancelled")
			}

			result, err := p.ProcessRow(row, candidates)
			if err != nil {
				zap.L().Warn("batch: row skipped",
					zap.Int("row", row.RowIndex),
					zap.String("management_no", row.ManagementNo),
					zap.Error(err),
				)
				result = model.RowResult{
					Row:        row,
					Skipped:    true,
					SkipReason: eris.ToString(err, false),
				}
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, model.RunTotals{}, err
	}

	var totals model.RunTotals
	for _, r := range results {
		totals.Tally(r)
	}
	return results, totals, nil
}
