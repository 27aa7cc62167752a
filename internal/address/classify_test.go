package address

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelops/pickup-cli/internal/model"
)

func TestClassify_RoadAnchorWithUnitAndAnnotation(t *testing.T) {
	c := NewClassifier(DefaultRules())
	raw := "서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)"

	segs := c.Classify(raw)
	require.Len(t, segs, 4)

	assert.Equal(t, model.SegmentRoadAddress, segs[0].Kind)
	assert.Equal(t, "서울 관악구 인헌21길 5", segs[0].Text)

	assert.Equal(t, model.SegmentUnclassified, segs[1].Kind)
	assert.Equal(t, "대림빌라", segs[1].Text)

	assert.Equal(t, model.SegmentBuildingUnit, segs[2].Kind)
	assert.Equal(t, "302호", segs[2].Text)

	assert.Equal(t, model.SegmentAnnotation, segs[3].Kind)
	assert.Equal(t, "(정화정님과 한 가구)", segs[3].Text)
}

func TestClassify_InlineRoadNumber(t *testing.T) {
	c := NewClassifier(DefaultRules())

	segs := c.Classify("서울 강남구 테헤란로123, 5층")
	require.Len(t, segs, 2)
	assert.Equal(t, model.SegmentRoadAddress, segs[0].Kind)
	assert.Equal(t, "서울 강남구 테헤란로123", segs[0].Text)
	assert.Equal(t, model.SegmentFloor, segs[1].Kind)
	assert.Equal(t, "5층", segs[1].Text)
}

func TestClassify_LotNumberAnchor(t *testing.T) {
	c := NewClassifier(DefaultRules())

	segs := c.Classify("부산 금정구 장전동 123-4, 101동 202호")
	require.Len(t, segs, 2)
	assert.Equal(t, model.SegmentRoadAddress, segs[0].Kind)
	assert.Equal(t, "부산 금정구 장전동 123-4", segs[0].Text)

	// Adjacent unit tokens separated only by a space merge into one segment.
	assert.Equal(t, model.SegmentBuildingUnit, segs[1].Kind)
	assert.Equal(t, "101동 202호", segs[1].Text)
}

func TestClassify_BunjiNumeral(t *testing.T) {
	c := NewClassifier(DefaultRules())

	segs := c.Classify("서울 중구 명동 10번지")
	require.Len(t, segs, 1)
	assert.Equal(t, model.SegmentRoadAddress, segs[0].Kind)
	assert.Equal(t, "서울 중구 명동 10번지", segs[0].Text)
}

func TestClassify_NoAnchor(t *testing.T) {
	c := NewClassifier(DefaultRules())

	segs := c.Classify("어디인지 모르는 주소")
	require.Len(t, segs, 1)
	assert.Equal(t, model.SegmentUnclassified, segs[0].Kind)
	assert.Equal(t, "어디인지 모르는 주소", segs[0].Text)
}

func TestClassify_FullWidthDigitsFoldForMatchingOnly(t *testing.T) {
	c := NewClassifier(DefaultRules())

	// Full-width digits match the numeral and unit patterns, but segment
	// text stays byte-identical to the raw input.
	raw := "서울 관악구 인헌21길 ５, ３０２호"
	segs := c.Classify(raw)
	require.Len(t, segs, 2)

	assert.Equal(t, model.SegmentRoadAddress, segs[0].Kind)
	assert.Equal(t, "서울 관악구 인헌21길 ５", segs[0].Text)
	assert.Equal(t, model.SegmentBuildingUnit, segs[1].Kind)
	assert.Equal(t, "３０２호", segs[1].Text)

	for _, s := range segs {
		assert.Equal(t, raw[s.Start:s.End], s.Text)
	}
}

func TestClassify_FullWidthParens(t *testing.T) {
	c := NewClassifier(DefaultRules())

	segs := c.Classify("서울 강남구 테헤란로 123 （경비실）")
	require.Len(t, segs, 2)
	assert.Equal(t, model.SegmentRoadAddress, segs[0].Kind)
	assert.Equal(t, model.SegmentAnnotation, segs[1].Kind)
	assert.Equal(t, "（경비실）", segs[1].Text)
}

func TestClassify_UnmatchedParenIsNotAnnotation(t *testing.T) {
	c := NewClassifier(DefaultRules())

	segs := c.Classify("서울 강남구 테헤란로 123 (본관")
	for _, s := range segs {
		assert.NotEqual(t, model.SegmentAnnotation, s.Kind)
	}
}

// Every segment text must equal the raw span it claims, and removing all
// segment spans must leave nothing but whitespace and commas.
func TestClassify_SegmentsCoverRaw(t *testing.T) {
	c := NewClassifier(DefaultRules())

	corpus := []string{
		"서울 관악구 인헌21길 5, 대림빌라 302호 (정화정님과 한 가구)",
		"서울 강남구 테헤란로 123",
		"서울 강남구 테헤란로123, 5층",
		"부산 금정구 장전동 123-4, 101동 202호",
		"서울 중구 명동 10번지",
		"대전 서구 둔산로 100, 지하1층",
		"서울 관악구 인헌21길 5, 대림빌라, 302호, 경비실 맡김",
		"어디인지 모르는 주소",
		"서울 강남구 테헤란로 123 (본관",
	}

	for _, raw := range corpus {
		segs := c.Classify(raw)

		residue := []byte(raw)
		prevEnd := -1
		for _, s := range segs {
			require.Equal(t, raw[s.Start:s.End], s.Text, raw)
			assert.GreaterOrEqual(t, s.Start, prevEnd, "segments must not overlap: %s", raw)
			prevEnd = s.End
			for i := s.Start; i < s.End; i++ {
				residue[i] = ' '
			}
		}

		for _, r := range string(residue) {
			if r == ',' || unicode.IsSpace(r) {
				continue
			}
			t.Errorf("uncovered rune %q in %q", r, raw)
		}
	}
}
