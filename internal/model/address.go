package model

// SegmentKind classifies one span of a raw pickup address.
type SegmentKind string

const (
	SegmentRoadAddress  SegmentKind = "road_address"
	SegmentBuildingUnit SegmentKind = "building_unit"
	SegmentFloor        SegmentKind = "floor"
	SegmentAnnotation   SegmentKind = "annotation"
	SegmentUnclassified SegmentKind = "unclassified"
)

// Segment is one classified span of the raw address string. Segments are
// produced in left-to-right order, never overlap, and Text is exactly
// Raw[Start:End]. Removing every segment span from the raw string leaves
// only separator characters (whitespace and commas).
type Segment struct {
	Kind  SegmentKind `json:"kind"`
	Text  string      `json:"text"`
	Start int         `json:"start"` // byte offset into the raw string
	End   int         `json:"end"`
}

// Confidence flags whether a parse is safe for automatic form entry.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ParsedAddress is the assembled output of address segmentation.
//
// RoadAddress feeds the courier site's address-lookup field; DetailAddress
// is typed verbatim into the free-text unit field; Annotation is a
// parenthetical note kept separate so it never corrupts the unit number.
type ParsedAddress struct {
	RoadAddress   string     `json:"road_address"`
	DetailAddress string     `json:"detail_address"`
	Annotation    string     `json:"annotation,omitempty"`
	Confidence    Confidence `json:"confidence"`
	Diagnostics   []string   `json:"diagnostics,omitempty"`
}
