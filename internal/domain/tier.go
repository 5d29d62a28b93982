package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tier is a discrete planning risk level. The zero value is not a valid tier.
type Tier string

const (
	Showstopper       Tier = "showstopper"
	ExtremelyHighRisk Tier = "extremely_high_risk"
	HighRisk          Tier = "high_risk"
	MediumHighRisk    Tier = "medium_high_risk"
	MediumRisk        Tier = "medium_risk"
	MediumLowRisk     Tier = "medium_low_risk"
	LowRisk           Tier = "low_risk"
)

// Tiers lists every tier, most severe first.
var Tiers = []Tier{
	Showstopper,
	ExtremelyHighRisk,
	HighRisk,
	MediumHighRisk,
	MediumRisk,
	MediumLowRisk,
	LowRisk,
}

var tierRank = func() map[Tier]int {
	m := make(map[Tier]int, len(Tiers))
	for i, t := range Tiers {
		// higher rank is more severe
		m[t] = len(Tiers) - i
	}
	return m
}()

// TierSummary is the display label and description for a tier.
type TierSummary struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

var tierSummaries = map[Tier]TierSummary{
	Showstopper: {
		Label:       "Showstopper",
		Description: "A constraint that is very likely to prevent development of the site.",
	},
	ExtremelyHighRisk: {
		Label:       "Extremely High Risk",
		Description: "Severe constraint; development would need exceptional justification.",
	},
	HighRisk: {
		Label:       "High Risk",
		Description: "Significant constraint requiring specialist assessment and likely mitigation.",
	},
	MediumHighRisk: {
		Label:       "Medium-High Risk",
		Description: "Notable constraint that will shape layout and design.",
	},
	MediumRisk: {
		Label:       "Medium Risk",
		Description: "Moderate constraint to be addressed through standard assessment.",
	},
	MediumLowRisk: {
		Label:       "Medium-Low Risk",
		Description: "Minor constraint; proportionate assessment recommended.",
	},
	LowRisk: {
		Label:       "Low Risk",
		Description: "No significant constraint identified.",
	},
}

// Valid reports whether t is one of the seven known tiers.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// Summary returns the display label and description for t.
func (t Tier) Summary() TierSummary {
	return tierSummaries[t]
}

func (t Tier) String() string { return string(t) }

// Compare returns a positive number when a is more severe than b, negative when
// b is more severe and zero when they are equal.
func Compare(a, b Tier) int {
	return tierRank[a] - tierRank[b]
}

// MoreSevere reports whether a is strictly more severe than b.
func MoreSevere(a, b Tier) bool {
	return Compare(a, b) > 0
}

// MaxTier returns the most severe of the given tiers. ok is false for empty input.
func MaxTier(tiers ...Tier) (top Tier, ok bool) {
	for _, t := range tiers {
		if !ok || MoreSevere(t, top) {
			top, ok = t, true
		}
	}
	return top, ok
}

// MinTier returns the least severe of a and b.
func MinTier(a, b Tier) Tier {
	if MoreSevere(a, b) {
		return b
	}
	return a
}

// TierFromLegacyScore converts the legacy numeric scale (1 = low_risk .. 7 = showstopper).
func TierFromLegacyScore(score int) (Tier, error) {
	if score < 1 || score > len(Tiers) {
		return "", fmt.Errorf("legacy risk score %d out of range 1..%d", score, len(Tiers))
	}
	return Tiers[len(Tiers)-score], nil
}

// ParseTier accepts the canonical string form of a tier.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.Valid() {
		return "", fmt.Errorf("invalid risk tier %q", s)
	}
	return t, nil
}

// UnmarshalJSON accepts the canonical string or a legacy numeric score.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseTier(s)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("risk tier must be a string or legacy integer score: %s", data)
	}
	parsed, err := TierFromLegacyScore(n)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if value.Kind == yaml.ScalarNode && value.ShortTag() == "!!int" {
		if err := value.Decode(&n); err != nil {
			return err
		}
		parsed, err := TierFromLegacyScore(n)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseTier(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
