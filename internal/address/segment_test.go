package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelops/pickup-cli/internal/model"
)

func TestParse_KeepsEveryDetailFragment(t *testing.T) {
	p := NewParser(DefaultRules())

	parsed := p.Parse("서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)")

	assert.Equal(t, "서울 관악구 인헌21길 5", parsed.RoadAddress)
	assert.Equal(t, "대림빌라 302호", parsed.DetailAddress)
	assert.Equal(t, "정화정님과 한 가구", parsed.Annotation)
	assert.Equal(t, model.ConfidenceHigh, parsed.Confidence)
	assert.Empty(t, parsed.Diagnostics)
}

func TestParse_MultipleCommasNeverTruncate(t *testing.T) {
	p := NewParser(DefaultRules())

	parsed := p.Parse("서울 관악구 인헌21길 5, 대림빌라, 302호, 경비실 맡김")

	assert.Equal(t, "서울 관악구 인헌21길 5", parsed.RoadAddress)
	assert.Equal(t, "대림빌라 302호 경비실 맡김", parsed.DetailAddress)
	assert.Equal(t, model.ConfidenceHigh, parsed.Confidence)
}

func TestParse_EmptyDetailIsHighConfidence(t *testing.T) {
	p := NewParser(DefaultRules())

	parsed := p.Parse("서울 강남구 테헤란로 123")

	assert.Equal(t, "서울 강남구 테헤란로 123", parsed.RoadAddress)
	assert.Empty(t, parsed.DetailAddress)
	assert.Equal(t, model.ConfidenceHigh, parsed.Confidence)
}

func TestParse_FloorDetail(t *testing.T) {
	p := NewParser(DefaultRules())

	parsed := p.Parse("대전 서구 둔산로 100, 지하1층")

	assert.Equal(t, "대전 서구 둔산로 100", parsed.RoadAddress)
	assert.Equal(t, "지하1층", parsed.DetailAddress)
	assert.Equal(t, model.ConfidenceHigh, parsed.Confidence)
}

func TestParse_NoAnchorIsLowConfidence(t *testing.T) {
	p := NewParser(DefaultRules())

	parsed := p.Parse("어디인지 모르는 주소")

	assert.Empty(t, parsed.RoadAddress)
	assert.Equal(t, model.ConfidenceLow, parsed.Confidence)
	assert.Contains(t, parsed.Diagnostics, "road address anchor not found")
}

func TestParse_DetailWithoutUnitIsLowConfidence(t *testing.T) {
	p := NewParser(DefaultRules())

	parsed := p.Parse("서울 강남구 테헤란로 123, 스타벅스 건너편")

	assert.Equal(t, "서울 강남구 테헤란로 123", parsed.RoadAddress)
	assert.Equal(t, "스타벅스 건너편", parsed.DetailAddress)
	assert.Equal(t, model.ConfidenceLow, parsed.Confidence)
	assert.Contains(t, parsed.Diagnostics, "no unit pattern matched in detail text")
}

// Re-parsing an assembled road + detail pair must reproduce the same pair.
func TestParse_Idempotent(t *testing.T) {
	p := NewParser(DefaultRules())

	corpus := []string{
		"서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)",
		"부산 금정구 장전동 123-4, 101동 202호",
		"대전 서구 둔산로 100, 지하1층",
		"서울 강남구 테헤란로 123",
	}

	for _, raw := range corpus {
		first := p.Parse(raw)
		require.NotEmpty(t, first.RoadAddress, raw)

		rejoined := first.RoadAddress
		if first.DetailAddress != "" {
			rejoined += ", " + first.DetailAddress
		}
		second := p.Parse(rejoined)

		assert.Equal(t, first.RoadAddress, second.RoadAddress, raw)
		assert.Equal(t, first.DetailAddress, second.DetailAddress, raw)
	}
}
