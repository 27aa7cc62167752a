package model

import "time"

// RowResult is the structured output handed to the automation layer for
// one recipient row.
type RowResult struct {
	Row         RecipientRow  `json:"row"`
	Parsed      ParsedAddress `json:"parsed"`
	Resolution  Resolution    `json:"resolution"`
	AutoSafe    bool          `json:"auto_safe"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	// Skipped marks a row that failed input validation (e.g. missing raw
	// address). Skipped rows are reported, never silently dropped.
	Skipped    bool   `json:"skipped,omitempty"`
	SkipReason string `json:"skip_reason,omitempty"`
}

// RunStatus represents the current state of a batch run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// RunTotals summarizes one batch run.
type RunTotals struct {
	Rows          int `json:"rows"`
	AutoSafe      int `json:"auto_safe"`
	LowConfidence int `json:"low_confidence"`
	Ambiguous     int `json:"ambiguous"`
	NotFound      int `json:"not_found"`
	Skipped       int `json:"skipped"`
}

// BatchRun records one processed spreadsheet batch.
type BatchRun struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"` // spreadsheet path
	Status    RunStatus `json:"status"`
	Totals    RunTotals `json:"totals"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tally folds one row result into the totals.
func (t *RunTotals) Tally(r RowResult) {
	t.Rows++
	if r.Skipped {
		t.Skipped++
		return
	}
	if r.AutoSafe {
		t.AutoSafe++
	}
	if r.Parsed.Confidence == ConfidenceLow {
		t.LowConfidence++
	}
	switch r.Resolution.State {
	case ResolutionAmbiguous:
		t.Ambiguous++
	case ResolutionNotFound:
		t.NotFound++
	}
}
