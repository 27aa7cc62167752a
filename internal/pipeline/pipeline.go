// Package pipeline wires classification, segmentation, disambiguation and
// the auto-safety gate into the per-row entry point.
package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/parcelops/pickup-cli/internal/address"
	"github.com/parcelops/pickup-cli/internal/model"
	"github.com/parcelops/pickup-cli/internal/recipient"
)

// ErrMissingRawAddress marks a row without a pickup address. This is a
// hard input error: the row is skipped and reported, the batch continues.
var ErrMissingRawAddress = eris.New("pipeline: row has no raw address")

// ErrMissingName marks a row without a recipient name.
var ErrMissingName = eris.New("pipeline: row has no recipient name")

// ErrMissingManagementNo marks a row without its management number, the
// spreadsheet's unique key and primary disambiguation signal.
var ErrMissingManagementNo = eris.New("pipeline: row has no management number")

// Processor runs the full per-row flow. It holds only immutable rule
// tables, so one Processor is safe for concurrent rows.
type Processor struct {
	parser   *address.Parser
	resolver *recipient.Resolver
}

// New builds a Processor from parser rules and a resolver signal order.
func New(rules address.Rules, signals []recipient.Signal) *Processor {
	return &Processor{
		parser:   address.NewParser(rules),
		resolver: recipient.NewResolver(signals),
	}
}

// Parser returns the underlying address parser.
func (p *Processor) Parser() *address.Parser {
	return p.parser
}

// Resolver returns the underlying recipient resolver.
func (p *Processor) Resolver() *recipient.Resolver {
	return p.resolver
}

// ProcessRow parses the row's pickup address, resolves the recipient
// against the candidate list, and gates the result for automatic entry.
// The returned error is an input error only; parse and disambiguation
// ambiguity are values on the result, never errors.
func (p *Processor) ProcessRow(row model.RecipientRow, candidates []model.Candidate) (model.RowResult, error) {
	if strings.TrimSpace(row.RawAddress) == "" {
		return model.RowResult{}, eris.Wrapf(ErrMissingRawAddress, "row %d (%s)", row.RowIndex, row.ManagementNo)
	}
	if strings.TrimSpace(row.Name) == "" {
		return model.RowResult{}, eris.Wrapf(ErrMissingName, "row %d (%s)", row.RowIndex, row.ManagementNo)
	}
	if strings.TrimSpace(row.ManagementNo) == "" {
		return model.RowResult{}, eris.Wrapf(ErrMissingManagementNo, "row %d (%s)", row.RowIndex, row.Name)
	}

	parsed := p.parser.Parse(row.RawAddress)
	resolution := p.resolver.Resolve(row, candidates)
	autoSafe, diags := Gate(parsed, resolution)

	return model.RowResult{
		Row:         row,
		Parsed:      parsed,
		Resolution:  resolution,
		AutoSafe:    autoSafe,
		Diagnostics: diags,
	}, nil
}
