package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelops/pickup-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sampleResults() []model.RowResult {
	return []model.RowResult{
		{
			Row: model.RecipientRow{RowIndex: 1, ManagementNo: "2024-0153", Name: "김민수",
				RawAddress: "서울 관악구 인헌21길 5, 302호"},
			Parsed: model.ParsedAddress{
				RoadAddress:   "서울 관악구 인헌21길 5",
				DetailAddress: "302호",
				Confidence:    model.ConfidenceHigh,
			},
			Resolution: model.Resolution{State: model.ResolutionResolved},
			AutoSafe:   true,
		},
		{
			Row:        model.RecipientRow{RowIndex: 2, ManagementNo: "2024-0154", Name: "육지연"},
			Parsed:     model.ParsedAddress{Confidence: model.ConfidenceLow},
			Resolution: model.Resolution{State: model.ResolutionAmbiguous},
		},
	}
}

func TestSQLiteStore_RunRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	run, err := st.CreateRun(ctx, "subjects.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	results := sampleResults()
	require.NoError(t, st.SaveRowResults(ctx, run.ID, results))

	totals := model.RunTotals{Rows: 2, AutoSafe: 1, LowConfidence: 1, Ambiguous: 1}
	require.NoError(t, st.CompleteRun(ctx, run.ID, totals))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, "subjects.xlsx", got.Source)
	assert.Equal(t, totals, got.Totals)
	assert.Empty(t, got.Error)

	stored, err := st.ListRowResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "김민수", stored[0].Row.Name)
	assert.Equal(t, "서울 관악구 인헌21길 5", stored[0].Parsed.RoadAddress)
	assert.True(t, stored[0].AutoSafe)
	assert.Equal(t, model.ResolutionAmbiguous, stored[1].Resolution.State)
}

func TestSQLiteStore_FailRun(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	run, err := st.CreateRun(ctx, "subjects.xlsx")
	require.NoError(t, err)

	require.NoError(t, st.FailRun(ctx, run.ID, "spreadsheet unreadable"))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "spreadsheet unreadable", got.Error)
}

func TestSQLiteStore_UnknownRun(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	assert.Error(t, st.CompleteRun(ctx, "no-such-run", model.RunTotals{}))
	assert.Error(t, st.FailRun(ctx, "no-such-run", "x"))

	_, err := st.GetRun(ctx, "no-such-run")
	assert.Error(t, err)
}

func TestSQLiteStore_ListRunsFilter(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	r1, err := st.CreateRun(ctx, "a.xlsx")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "b.xlsx")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, r1.ID, model.RunTotals{Rows: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLiteStore_ListRowResultsEmpty(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLite(t)

	run, err := st.CreateRun(ctx, "a.xlsx")
	require.NoError(t, err)

	results, err := st.ListRowResults(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, results)
}
