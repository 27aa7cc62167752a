//go:build !integration

package main

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelops/pickup-cli/internal/model"
)

func TestWriteAuditCSV(t *testing.T) {
	results := []model.RowResult{
		{
			Row: model.RecipientRow{RowIndex: 1, ManagementNo: "2024-0153", Name: "김민수",
				RawAddress: "서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)"},
			Parsed: model.ParsedAddress{
				RoadAddress:   "서울 관악구 인헌21길 5",
				DetailAddress: "대림빌라 302호",
				Annotation:    "정화정님과 한 가구",
				Confidence:    model.ConfidenceHigh,
			},
			Resolution:  model.Resolution{State: model.ResolutionResolved},
			AutoSafe:    true,
			Diagnostics: []string{"recipient tie broken by phone_suffix"},
		},
		{
			Row:        model.RecipientRow{RowIndex: 2, ManagementNo: "2024-0154", Name: "육지연"},
			Skipped:    true,
			SkipReason: "row 2 (2024-0154): row has no raw address",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeAuditCSV(&buf, results))

	// BOM first so spreadsheet tools detect UTF-8.
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"row_index", "management_no", "subject_name", "raw_address",
		"road_address", "detail_address", "annotation",
		"confidence", "auto_safe", "resolution", "diagnostics",
	}, records[0])

	first := records[1]
	require.Len(t, first, 11)
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "2024-0153", first[1])
	assert.Equal(t, "김민수", first[2])
	assert.Equal(t, "서울 관악구 인헌21길 5", first[4])
	assert.Equal(t, "대림빌라 302호", first[5])
	assert.Equal(t, "정화정님과 한 가구", first[6])
	assert.Equal(t, "high", first[7])
	assert.Equal(t, "true", first[8])
	assert.Equal(t, "resolved", first[9])
	assert.Equal(t, "recipient tie broken by phone_suffix", first[10])

	// Skipped rows report their skip reason in the diagnostics column.
	skipped := records[2]
	assert.Equal(t, "2", skipped[0])
	assert.Equal(t, "false", skipped[8])
	assert.Equal(t, "row 2 (2024-0154): row has no raw address", skipped[10])
}

func TestWriteAuditCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeAuditCSV(&buf, nil))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1) // header only
}
