package model

// RecipientRow is one spreadsheet row: a recipient keyed by management
// number with a free-form pickup address. Immutable after construction.
type RecipientRow struct {
	RowIndex     int    `json:"row_index"` // 1-based data row in the sheet
	ManagementNo string `json:"management_no"`
	Name         string `json:"name"`
	RawAddress   string `json:"raw_address"`
	Phone        string `json:"phone,omitempty"`
}

// Candidate is one entry visible in an address book or the spreadsheet
// itself. Hint fields may be absent.
type Candidate struct {
	DisplayName      string `json:"display_name"`
	ManagementNoHint string `json:"management_no_hint,omitempty"`
	PhoneSuffix      string `json:"phone_suffix,omitempty"`
	AddressExcerpt   string `json:"address_excerpt,omitempty"`
}

// ResolutionState is the outcome of recipient disambiguation.
type ResolutionState string

const (
	ResolutionResolved  ResolutionState = "resolved"
	ResolutionAmbiguous ResolutionState = "ambiguous"
	ResolutionNotFound  ResolutionState = "not_found"
)

// Resolution is the three-state disambiguation result. Ambiguity is a
// representable value, never an implicit first pick.
type Resolution struct {
	State ResolutionState `json:"state"`
	// Candidate is set when State is resolved.
	Candidate *Candidate `json:"candidate,omitempty"`
	// Candidates holds the surviving set in original discovery order when
	// State is ambiguous.
	Candidates []Candidate `json:"candidates,omitempty"`
	// Reason names the tie-break signal that resolved the match, or the
	// signals that were insufficient when ambiguous.
	Reason string `json:"reason,omitempty"`
}
