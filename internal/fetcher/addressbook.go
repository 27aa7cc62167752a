package fetcher

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/parcelops/pickup-cli/internal/model"
)

// addressBookHeaders maps recognized CSV header names (lowercased) onto
// candidate fields. Korean and english exports are both accepted.
var addressBookHeaders = map[string]string{
	"name":          "name",
	"이름":            "name",
	"성명":            "name",
	"management_no": "management_no",
	"관리번호":          "management_no",
	"phone_suffix":  "phone_suffix",
	"전화뒷자리":         "phone_suffix",
	"연락처":           "phone_suffix",
	"address":       "address",
	"주소":            "address",
}

// ReadAddressBook loads the address-book snapshot from a CSV file. The
// snapshot is loaded once per batch and treated as immutable shared-read
// data; entry order is preserved as the discovery order.
func ReadAddressBook(path string) ([]model.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "addressbook: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "addressbook: read csv")
	}
	if len(records) < 2 {
		return nil, nil // header only or empty
	}

	idx := map[string]int{}
	for i, h := range records[0] {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if field, ok := addressBookHeaders[h]; ok {
			if _, taken := idx[field]; !taken {
				idx[field] = i
			}
		}
	}
	if _, ok := idx["name"]; !ok {
		return nil, eris.New("addressbook: no name column found")
	}

	var candidates []model.Candidate
	for _, rec := range records[1:] {
		c := model.Candidate{
			DisplayName:      fieldAt(rec, idx, "name"),
			ManagementNoHint: fieldAt(rec, idx, "management_no"),
			PhoneSuffix:      fieldAt(rec, idx, "phone_suffix"),
			AddressExcerpt:   fieldAt(rec, idx, "address"),
		}
		if c.DisplayName == "" {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

// CandidatesFromRows derives an address-book snapshot from the
// spreadsheet itself, for runs without a separate address-book export.
func CandidatesFromRows(rows []model.RecipientRow) []model.Candidate {
	candidates := make([]model.Candidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, model.Candidate{
			DisplayName:      r.Name,
			ManagementNoHint: r.ManagementNo,
			PhoneSuffix:      r.Phone,
			AddressExcerpt:   r.RawAddress,
		})
	}
	return candidates
}

func fieldAt(rec []string, idx map[string]int, field string) string {
	i, ok := idx[field]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
