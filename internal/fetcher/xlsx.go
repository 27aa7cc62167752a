// Package fetcher loads recipient rows and address-book candidates from
// local spreadsheet and CSV files.
package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/parcelops/pickup-cli/internal/model"
)

// SheetOptions selects the worksheet holding recipient rows.
type SheetOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // extra header rows above the column header
}

// ColumnMap names the spreadsheet columns to read. ManagementNo, Name and
// PickupAddress are required; Phone is optional.
type ColumnMap struct {
	ManagementNo  string
	Name          string
	PickupAddress string
	Phone         string
}

// ReadRecipientRows reads the spreadsheet into recipient rows. The first
// non-skipped row is the column header; rows whose mapped cells are all
// blank are dropped. A row with a blank pickup address is kept — input
// validation is the pipeline's job, and the row must be reported, not
// silently dropped here.
func ReadRecipientRows(path string, opts SheetOptions, cols ColumnMap) ([]model.RecipientRow, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) <= opts.SkipRows {
		return nil, eris.Errorf("xlsx: sheet %q has no header row", sheet.Name)
	}

	header := rowToStrings(sheet.Rows[opts.SkipRows])
	idx, err := mapColumns(header, cols)
	if err != nil {
		return nil, err
	}

	var rows []model.RecipientRow
	for i, row := range sheet.Rows[opts.SkipRows+1:] {
		cells := rowToStrings(row)

		r := model.RecipientRow{
			RowIndex:     i + 1,
			ManagementNo: cellAt(cells, idx.managementNo),
			Name:         cellAt(cells, idx.name),
			RawAddress:   cellAt(cells, idx.pickupAddress),
			Phone:        cellAt(cells, idx.phone),
		}
		if r.ManagementNo == "" && r.Name == "" && r.RawAddress == "" {
			continue
		}
		rows = append(rows, r)
	}
	return rows, nil
}

type columnIndex struct {
	managementNo  int
	name          int
	pickupAddress int
	phone         int
}

func mapColumns(header []string, cols ColumnMap) (columnIndex, error) {
	idx := columnIndex{managementNo: -1, name: -1, pickupAddress: -1, phone: -1}

	for i, h := range header {
		switch strings.TrimSpace(h) {
		case cols.ManagementNo:
			idx.managementNo = i
		case cols.Name:
			idx.name = i
		case cols.PickupAddress:
			idx.pickupAddress = i
		case cols.Phone:
			if cols.Phone != "" {
				idx.phone = i
			}
		}
	}

	switch {
	case idx.managementNo < 0:
		return idx, eris.Errorf("xlsx: management number column %q not found", cols.ManagementNo)
	case idx.name < 0:
		return idx, eris.Errorf("xlsx: name column %q not found", cols.Name)
	case idx.pickupAddress < 0:
		return idx, eris.Errorf("xlsx: pickup address column %q not found", cols.PickupAddress)
	}
	return idx, nil
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func getSheet(f *xlsx.File, opts SheetOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
