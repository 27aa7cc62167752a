package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/parcelops/pickup-cli/internal/address"
	"github.com/parcelops/pickup-cli/internal/fetcher"
	"github.com/parcelops/pickup-cli/internal/model"
	"github.com/parcelops/pickup-cli/internal/pipeline"
	"github.com/parcelops/pickup-cli/internal/recipient"
	"github.com/parcelops/pickup-cli/internal/store"
)

// newProcessor builds the row processor from the configured rule tables
// and resolver signal order.
func newProcessor() (*pipeline.Processor, error) {
	rules := address.DefaultRules()
	if cfg.Parser.RulesPath != "" {
		r, err := address.LoadRules(cfg.Parser.RulesPath)
		if err != nil {
			return nil, err
		}
		rules = r
	}
	return pipeline.New(rules, recipient.ParseSignals(cfg.Resolver.Signals)), nil
}

// openStore opens the configured run store and migrates it.
func openStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

// loadCandidates loads the address-book snapshot, falling back to the
// spreadsheet rows themselves when no address-book export is configured.
func loadCandidates(bookPath string, rows []model.RecipientRow) ([]model.Candidate, error) {
	if bookPath == "" {
		zap.L().Debug("no address book configured; deriving candidates from spreadsheet")
		return fetcher.CandidatesFromRows(rows), nil
	}
	return fetcher.ReadAddressBook(bookPath)
}

// readInputRows loads the recipient rows from the configured spreadsheet,
// with an optional path override from a flag.
func readInputRows(pathOverride string) ([]model.RecipientRow, error) {
	path := pathOverride
	if path == "" {
		path = cfg.Input.Path
	}
	if path == "" {
		return nil, eris.New("no input spreadsheet: set input.path or pass --input")
	}

	rows, err := fetcher.ReadRecipientRows(path, fetcher.SheetOptions{
		SheetIndex: cfg.Input.SheetIndex,
		SheetName:  cfg.Input.Sheet,
		SkipRows:   cfg.Input.SkipRows,
	}, fetcher.ColumnMap{
		ManagementNo:  cfg.Input.Columns.ManagementNo,
		Name:          cfg.Input.Columns.Name,
		PickupAddress: cfg.Input.Columns.PickupAddress,
		Phone:         cfg.Input.Columns.Phone,
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded spreadsheet", zap.String("path", path), zap.Int("rows", len(rows)))
	return rows, nil
}
