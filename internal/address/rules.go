// Package address classifies free-form Korean pickup addresses into
// ordered segments and assembles the road-address / detail-address pair
// used by the courier reservation form.
package address

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Rules holds the suffix tables driving classification. All matching is
// deterministic; there is no dictionary lookup.
type Rules struct {
	// RoadSuffixes end a road-name token ("인헌21길", "테헤란로").
	RoadSuffixes []string `yaml:"road_suffixes"`
	// LotSuffixes end a legacy administrative-unit token that anchors a
	// lot-number address ("태평로1가 31", "역삼동 678-9").
	LotSuffixes []string `yaml:"lot_suffixes"`
	// UnitSuffixes end a digits+suffix building/unit token ("302호", "101동").
	UnitSuffixes []string `yaml:"unit_suffixes"`
	// FloorSuffixes end a digits+suffix floor token ("3층", "지하1층").
	FloorSuffixes []string `yaml:"floor_suffixes"`
}

// DefaultRules returns the built-in suffix tables.
func DefaultRules() Rules {
	return Rules{
		RoadSuffixes:  []string{"대로", "로", "길"},
		LotSuffixes:   []string{"동", "리", "가", "읍", "면"},
		UnitSuffixes:  []string{"호", "동"},
		FloorSuffixes: []string{"층"},
	}
}

// LoadRules reads a YAML rules file and merges it onto the defaults.
// Empty lists in the file keep the built-in table.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()

	data, err := os.ReadFile(path)
	if err != nil {
		return rules, eris.Wrapf(err, "address: read rules %s", path)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return rules, eris.Wrap(err, "address: parse rules")
	}

	if len(override.RoadSuffixes) > 0 {
		rules.RoadSuffixes = override.RoadSuffixes
	}
	if len(override.LotSuffixes) > 0 {
		rules.LotSuffixes = override.LotSuffixes
	}
	if len(override.UnitSuffixes) > 0 {
		rules.UnitSuffixes = override.UnitSuffixes
	}
	if len(override.FloorSuffixes) > 0 {
		rules.FloorSuffixes = override.FloorSuffixes
	}
	return rules, nil
}
