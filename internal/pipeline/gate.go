package pipeline

import "github.com/parcelops/pickup-cli/internal/model"

// Gate decides whether a row may be entered automatically. Auto-safe
// requires a high-confidence parse AND a resolved recipient; anything
// less routes the row to manual entry with its diagnostics.
func Gate(parsed model.ParsedAddress, resolution model.Resolution) (bool, []string) {
	diags := append([]string(nil), parsed.Diagnostics...)

	if parsed.Confidence != model.ConfidenceHigh {
		diags = append(diags, "low parse confidence; manual entry required")
	}

	switch resolution.State {
	case model.ResolutionResolved:
		if resolution.Reason != "" {
			diags = append(diags, "recipient "+resolution.Reason)
		}
	case model.ResolutionAmbiguous:
		diags = append(diags, "recipient ambiguous: "+resolution.Reason)
	case model.ResolutionNotFound:
		diags = append(diags, "recipient not found in address book")
	}

	autoSafe := parsed.Confidence == model.ConfidenceHigh &&
		resolution.State == model.ResolutionResolved
	return autoSafe, diags
}
