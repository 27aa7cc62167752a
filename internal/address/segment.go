package address

import (
	"regexp"
	"strings"

	"github.com/parcelops/pickup-cli/internal/model"
)

// Parser assembles classified segments into the two form-field values:
// the searchable road address and the free-text detail address.
type Parser struct {
	classifier *Classifier
	unitLeak   *regexp.Regexp
}

// NewParser builds a parser over the given rule tables.
func NewParser(rules Rules) *Parser {
	alt := suffixAlt(append(append([]string{}, rules.UnitSuffixes...), rules.FloorSuffixes...))
	return &Parser{
		classifier: NewClassifier(rules),
		// Post-check pattern: a digits+unit-suffix token inside the road
		// address means the anchor scan went wrong.
		unitLeak: regexp.MustCompile(`(?:^|\s)(?:지하)?\d+(?:-\d+)?(?:` + alt + `)(?:\s|$)`),
	}
}

// Classifier exposes the underlying classifier, mainly for diagnostics
// output of the parse command.
func (p *Parser) Classifier() *Classifier {
	return p.classifier
}

// Parse classifies raw and assembles the result.
func (p *Parser) Parse(raw string) model.ParsedAddress {
	return p.Assemble(p.classifier.Classify(raw))
}

// Assemble builds a ParsedAddress from ordered segments.
//
// Every unclassified, building-unit, and floor segment after the anchor
// joins the detail address in original order: fragments on either side of
// a comma are concatenated, never truncated at the first comma.
func (p *Parser) Assemble(segs []model.Segment) model.ParsedAddress {
	var roadParts, detailParts, annParts []string
	hasUnit := false

	for _, s := range segs {
		switch s.Kind {
		case model.SegmentRoadAddress:
			roadParts = append(roadParts, s.Text)
		case model.SegmentBuildingUnit, model.SegmentFloor:
			hasUnit = true
			detailParts = append(detailParts, s.Text)
		case model.SegmentUnclassified:
			detailParts = append(detailParts, s.Text)
		case model.SegmentAnnotation:
			annParts = append(annParts, stripParenMarkers(s.Text))
		}
	}

	parsed := model.ParsedAddress{
		RoadAddress:   collapseSpaces(strings.Join(roadParts, " ")),
		DetailAddress: collapseSpaces(strings.Join(detailParts, " ")),
		Annotation:    strings.Join(annParts, "; "),
		Confidence:    model.ConfidenceHigh,
	}

	switch {
	case parsed.RoadAddress == "":
		parsed.Confidence = model.ConfidenceLow
		parsed.Diagnostics = append(parsed.Diagnostics, "road address anchor not found")
	case hasUnit:
		// Recognized unit or floor token: safe to type automatically.
	case parsed.DetailAddress == "":
		// Legitimately empty detail: nothing remained after the anchor.
	default:
		parsed.Confidence = model.ConfidenceLow
		parsed.Diagnostics = append(parsed.Diagnostics, "no unit pattern matched in detail text")
	}

	if parsed.RoadAddress != "" && p.unitLeak.MatchString(parsed.RoadAddress) {
		parsed.Confidence = model.ConfidenceLow
		parsed.Diagnostics = append(parsed.Diagnostics, "unit token found inside road address")
	}

	return parsed
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stripParenMarkers(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "("), "（")
	s = strings.TrimSuffix(strings.TrimSuffix(s, ")"), "）")
	return strings.TrimSpace(s)
}
