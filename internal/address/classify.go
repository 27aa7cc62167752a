package address

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"

	"github.com/parcelops/pickup-cli/internal/model"
)

// Classifier splits a raw pickup address into ordered, classified
// segments. Classification is total and side-effect-free: spans that match
// no pattern become unclassified segments rather than errors.
type Classifier struct {
	rules      Rules
	roadName   *regexp.Regexp
	roadInline *regexp.Regexp
	lotName    *regexp.Regexp
	numeral    *regexp.Regexp
	unit       *regexp.Regexp
	floor      *regexp.Regexp
}

// NewClassifier compiles the suffix tables into matchers.
func NewClassifier(rules Rules) *Classifier {
	roadAlt := suffixAlt(rules.RoadSuffixes)
	lotAlt := suffixAlt(rules.LotSuffixes)
	unitAlt := suffixAlt(rules.UnitSuffixes)
	floorAlt := suffixAlt(rules.FloorSuffixes)

	return &Classifier{
		rules:      rules,
		roadName:   regexp.MustCompile(`^[0-9A-Za-z가-힣·.]+(?:` + roadAlt + `)$`),
		roadInline: regexp.MustCompile(`^[0-9A-Za-z가-힣·.]+(?:` + roadAlt + `)\d+(?:-\d+)?$`),
		lotName:    regexp.MustCompile(`^[가-힣][0-9가-힣]*(?:` + lotAlt + `)$`),
		numeral:    regexp.MustCompile(`^\d+(?:-\d+)?(?:번지)?$`),
		unit:       regexp.MustCompile(`^[A-Za-z]?\d+(?:-\d+)?(?:` + unitAlt + `)$`),
		floor:      regexp.MustCompile(`^(?:지하|B)?\d+(?:` + floorAlt + `)$`),
	}
}

func suffixAlt(suffixes []string) string {
	quoted := make([]string, len(suffixes))
	for i, s := range suffixes {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return strings.Join(quoted, "|")
}

// token is one separator-delimited span of the raw string.
type token struct {
	text  string
	start int
	end   int
}

// span is a half-open byte range into the raw string.
type span struct {
	start int
	end   int
}

// Classify splits raw into classified segments. Segments are ordered,
// non-overlapping, and each Text equals raw[Start:End]; removing every
// segment span from raw leaves only whitespace and commas.
func (c *Classifier) Classify(raw string) []model.Segment {
	annSpans := parenSpans(raw)
	masked := maskSpans(raw, annSpans)
	toks := tokenize(masked)

	anchorEnd, anchored := c.findAnchor(toks)

	var segs []model.Segment
	for _, tok := range toks {
		var kind model.SegmentKind
		switch {
		case anchored && tok.end <= anchorEnd:
			kind = model.SegmentRoadAddress
		default:
			kind = c.classifyDetailToken(tok.text)
		}

		// Extend the previous segment when the same kind continues across
		// plain whitespace. A comma always starts a new segment.
		if n := len(segs); n > 0 && segs[n-1].Kind == kind && gapIsSpace(raw, segs[n-1].End, tok.start) {
			segs[n-1].End = tok.end
			segs[n-1].Text = raw[segs[n-1].Start:tok.end]
			continue
		}
		segs = append(segs, model.Segment{Kind: kind, Text: tok.text, Start: tok.start, End: tok.end})
	}

	for _, sp := range annSpans {
		segs = append(segs, model.Segment{
			Kind:  model.SegmentAnnotation,
			Text:  raw[sp.start:sp.end],
			Start: sp.start,
			End:   sp.end,
		})
	}

	sortSegments(segs)
	return segs
}

// findAnchor locates the road-or-lot-number anchor and returns the byte
// offset just past its numeral. Unit patterns are only scanned after this
// offset, which keeps road numerals out of the unit scan.
func (c *Classifier) findAnchor(toks []token) (int, bool) {
	for i, tok := range toks {
		folded := width.Narrow.String(tok.text)

		if c.isRoadName(folded) && i+1 < len(toks) &&
			c.numeral.MatchString(width.Narrow.String(toks[i+1].text)) {
			return toks[i+1].end, true
		}
		if c.isRoadInline(folded) {
			return tok.end, true
		}
		if c.lotName.MatchString(folded) && i+1 < len(toks) &&
			c.numeral.MatchString(width.Narrow.String(toks[i+1].text)) {
			return toks[i+1].end, true
		}
	}
	return 0, false
}

// isRoadName reports whether the folded token is a road-name token: it
// ends in a road suffix and carries a Hangul name before the suffix.
func (c *Classifier) isRoadName(folded string) bool {
	if !c.roadName.MatchString(folded) {
		return false
	}
	return containsHangul(trimLongestSuffix(folded, c.rules.RoadSuffixes))
}

// isRoadInline matches the single-token form "테헤란로123".
func (c *Classifier) isRoadInline(folded string) bool {
	if !c.roadInline.MatchString(folded) {
		return false
	}
	name := strings.TrimRight(folded, "0123456789-")
	return containsHangul(trimLongestSuffix(name, c.rules.RoadSuffixes))
}

func (c *Classifier) classifyDetailToken(text string) model.SegmentKind {
	folded := width.Narrow.String(text)
	switch {
	case c.floor.MatchString(folded):
		return model.SegmentFloor
	case c.unit.MatchString(folded):
		return model.SegmentBuildingUnit
	default:
		return model.SegmentUnclassified
	}
}

// trimLongestSuffix removes the longest matching suffix from s, or returns
// s unchanged when none matches.
func trimLongestSuffix(s string, suffixes []string) string {
	best := ""
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) && len(suf) > len(best) {
			best = suf
		}
	}
	return strings.TrimSuffix(s, best)
}

func containsHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

// parenSpans returns the matched parenthesized spans of raw, including the
// markers. ASCII and full-width parentheses both count; an unmatched open
// paren is left to ordinary tokenization.
func parenSpans(raw string) []span {
	var spans []span
	for i := 0; i < len(raw); {
		r, size := decodeRune(raw[i:])
		if r != '(' && r != '（' {
			i += size
			continue
		}
		closed := -1
		for j := i + size; j < len(raw); {
			rr, ss := decodeRune(raw[j:])
			if rr == ')' || rr == '）' {
				closed = j + ss
				break
			}
			j += ss
		}
		if closed < 0 {
			i += size
			continue
		}
		spans = append(spans, span{start: i, end: closed})
		i = closed
	}
	return spans
}

// maskSpans blanks the given spans with spaces, byte for byte, so offsets
// into the masked string stay valid in the raw string.
func maskSpans(raw string, spans []span) string {
	if len(spans) == 0 {
		return raw
	}
	b := []byte(raw)
	for _, sp := range spans {
		for i := sp.start; i < sp.end; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// tokenize splits on whitespace and commas, keeping byte offsets.
func tokenize(s string) []token {
	var toks []token
	start := -1
	for i := 0; i < len(s); {
		r, size := decodeRune(s[i:])
		if unicode.IsSpace(r) || r == ',' {
			if start >= 0 {
				toks = append(toks, token{text: s[start:i], start: start, end: i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
		i += size
	}
	if start >= 0 {
		toks = append(toks, token{text: s[start:], start: start, end: len(s)})
	}
	return toks
}

// gapIsSpace reports whether raw[from:to] holds only plain whitespace.
func gapIsSpace(raw string, from, to int) bool {
	for _, r := range raw[from:to] {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func decodeRune(s string) (rune, int) {
	return utf8.DecodeRuneInString(s)
}

func sortSegments(segs []model.Segment) {
	// Insertion sort: segment counts are tiny and mostly ordered already.
	for i := 1; i < len(segs); i++ {
		for j := i; j > 0 && segs[j].Start < segs[j-1].Start; j-- {
			segs[j], segs[j-1] = segs[j-1], segs[j]
		}
	}
}
