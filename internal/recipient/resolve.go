// Package recipient disambiguates a spreadsheet recipient against
// address-book candidates sharing the same display name.
package recipient

import (
	"strconv"
	"strings"

	"github.com/parcelops/pickup-cli/internal/model"
)

// Signal is one tie-break criterion applied when several candidates share
// a display name.
type Signal string

const (
	SignalManagementNo   Signal = "management_no"
	SignalPhoneSuffix    Signal = "phone_suffix"
	SignalAddressOverlap Signal = "address_overlap"
)

// DefaultSignals is the tie-break priority order: the management number is
// the spreadsheet's unique key, phone suffixes collide across households,
// and address-book excerpts are truncated.
func DefaultSignals() []Signal {
	return []Signal{SignalManagementNo, SignalPhoneSuffix, SignalAddressOverlap}
}

// ParseSignals maps config strings onto signals, ignoring unknown names.
// An empty result falls back to the default order.
func ParseSignals(names []string) []Signal {
	var signals []Signal
	for _, n := range names {
		switch Signal(strings.TrimSpace(n)) {
		case SignalManagementNo, SignalPhoneSuffix, SignalAddressOverlap:
			signals = append(signals, Signal(strings.TrimSpace(n)))
		}
	}
	if len(signals) == 0 {
		return DefaultSignals()
	}
	return signals
}

// Resolver picks the correct address-book candidate for a recipient row.
type Resolver struct {
	signals []Signal
}

// NewResolver builds a resolver with the given tie-break order.
func NewResolver(signals []Signal) *Resolver {
	if len(signals) == 0 {
		signals = DefaultSignals()
	}
	return &Resolver{signals: signals}
}

// Resolve selects the candidate matching the row, or an explicit
// ambiguous/not-found result. A tie that no signal breaks returns the
// surviving candidates in original discovery order — never a positional
// pick.
func (r *Resolver) Resolve(row model.RecipientRow, candidates []model.Candidate) model.Resolution {
	name := strings.TrimSpace(row.Name)

	var matched []model.Candidate
	for _, c := range candidates {
		if strings.TrimSpace(c.DisplayName) == name {
			matched = append(matched, c)
		}
	}

	switch len(matched) {
	case 0:
		return model.Resolution{State: model.ResolutionNotFound}
	case 1:
		return model.Resolution{State: model.ResolutionResolved, Candidate: &matched[0]}
	}

	var tried []string
	for _, sig := range r.signals {
		filtered := filterBySignal(sig, row, matched)
		tried = append(tried, string(sig))
		switch {
		case len(filtered) == 1:
			return model.Resolution{
				State:     model.ResolutionResolved,
				Candidate: &filtered[0],
				Reason:    "tie broken by " + string(sig),
			}
		case len(filtered) > 1:
			// The signal narrowed the set; keep going with the survivors.
			matched = filtered
		}
		// A signal matching nothing is skipped, not narrowing.
	}

	return model.Resolution{
		State:      model.ResolutionAmbiguous,
		Candidates: matched,
		Reason: "name matched " + strconv.Itoa(len(matched)) + " candidates; insufficient signals: " +
			strings.Join(tried, ", "),
	}
}

func filterBySignal(sig Signal, row model.RecipientRow, candidates []model.Candidate) []model.Candidate {
	var out []model.Candidate
	for _, c := range candidates {
		if matchesSignal(sig, row, c) {
			out = append(out, c)
		}
	}
	return out
}

func matchesSignal(sig Signal, row model.RecipientRow, c model.Candidate) bool {
	switch sig {
	case SignalManagementNo:
		hint := strings.TrimSpace(c.ManagementNoHint)
		return hint != "" && hint == strings.TrimSpace(row.ManagementNo)
	case SignalPhoneSuffix:
		suffix := digitsOnly(c.PhoneSuffix)
		phone := digitsOnly(row.Phone)
		return suffix != "" && phone != "" && strings.HasSuffix(phone, suffix)
	case SignalAddressOverlap:
		excerpt := collapse(c.AddressExcerpt)
		return excerpt != "" && strings.Contains(collapse(row.RawAddress), excerpt)
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
