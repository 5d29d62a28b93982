package domain

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Band is a named proximity threshold reported by the spatial layer.
type Band string

const (
	BandOnSite           Band = "on_site"
	BandWithin50m        Band = "within_50m"
	BandWithin100m       Band = "within_100m"
	BandWithin250m       Band = "within_250m"
	BandWithin500m       Band = "within_500m"
	BandWithin1km        Band = "within_1km"
	BandWithin3km        Band = "within_3km"
	BandWithin5km        Band = "within_5km"
	BandBetween5And10km  Band = "between_5_10km"
	BandWithin10km       Band = "within_10km"
	BandBetween10And15km Band = "between_10_15km"

	// BandNearby is used by presence fallbacks when no proximity flag matched.
	BandNearby Band = "nearby"
)

// Bands lists the flag-backed bands nearest first. BandNearby is deliberately
// absent: no feature flag backs it.
var Bands = []Band{
	BandOnSite,
	BandWithin50m,
	BandWithin100m,
	BandWithin250m,
	BandWithin500m,
	BandWithin1km,
	BandWithin3km,
	BandWithin5km,
	BandBetween5And10km,
	BandWithin10km,
	BandBetween10And15km,
}

var bandPhrases = map[Band]string{
	BandOnSite:           "on site",
	BandWithin50m:        "within 50m",
	BandWithin100m:       "within 100m",
	BandWithin250m:       "within 250m",
	BandWithin500m:       "within 500m",
	BandWithin1km:        "within 1km",
	BandWithin3km:        "within 3km",
	BandWithin5km:        "within 5km",
	BandBetween5And10km:  "between 5km and 10km",
	BandWithin10km:       "within 10km",
	BandBetween10And15km: "between 10km and 15km",
	BandNearby:           "in the search area",
}

var bandOrder = func() map[Band]int {
	m := make(map[Band]int, len(Bands)+1)
	for i, b := range Bands {
		m[b] = i
	}
	m[BandNearby] = len(Bands)
	return m
}()

// Valid reports whether b is a known band, including BandNearby.
func (b Band) Valid() bool {
	_, ok := bandOrder[b]
	return ok
}

// Order is the band's position, nearest first.
func (b Band) Order() int {
	if o, ok := bandOrder[b]; ok {
		return o
	}
	return len(bandOrder)
}

// Suffix is the rule id suffix for b, e.g. "_within_500m".
func (b Band) Suffix() string {
	return "_" + string(b)
}

// Phrase is the human wording for b, e.g. "within 500m".
func (b Band) Phrase() string {
	if p, ok := bandPhrases[b]; ok {
		return p
	}
	return string(b)
}

// RuleID combines a designation type key with the band suffix.
func RuleID(designationType string, b Band) string {
	return designationType + b.Suffix()
}

func (b *Band) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed := Band(s)
	if !parsed.Valid() {
		return fmt.Errorf("invalid band %q", s)
	}
	*b = parsed
	return nil
}
