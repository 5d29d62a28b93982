package engine

import (
	"math"
	"strings"

	"siterisk/internal/content"
	"siterisk/internal/domain"
)

// Classification is the outcome of classifying one feature, or one family of
// features for coverage types.
type Classification struct {
	Tier  domain.Tier
	Band  domain.Band
	Label string
	// Coverage is the summed site coverage in percent, coverage types only.
	Coverage float64
}

// Classifier maps a single feature to a tier. matched is false when no band
// applies, in which case the feature produces no rule.
type Classifier interface {
	Classify(index int, f domain.Feature) (c Classification, matched bool, err error)
}

// FamilyClassifier classifies all features of a designation type together.
type FamilyClassifier interface {
	ClassifyFamily(indexes []int, fs []domain.Feature) (c Classification, matched bool, err error)
}

// registration holds exactly one of the two classifier shapes.
type registration struct {
	designation content.Designation
	single      Classifier
	family      FamilyClassifier
}

// newRegistration builds the classifier for a validated designation.
func newRegistration(d content.Designation) registration {
	r := registration{designation: d}
	switch d.Classifier {
	case content.KindGraded:
		r.single = &variantClassifier{key: d.Key, field: "grade", value: gradeOf, variants: d.Variants}
	case content.KindStatus:
		r.single = &variantClassifier{key: d.Key, field: "status", value: statusOf, variants: d.Variants}
	case content.KindCoverage:
		r.family = &coverageClassifier{key: d.Key, thresholds: d.Coverage}
	default:
		r.single = &bandClassifier{key: d.Key, bands: d.Bands}
	}
	return r
}

// check reports the first field f lacks for its classifier.
func (r registration) check(index int, f domain.Feature) error {
	if r.family != nil {
		if err := checkDistance(r.designation.Key, index, f); err != nil {
			return err
		}
		return checkCoverage(r.designation.Key, index, f)
	}
	_, _, err := r.single.Classify(index, f)
	return err
}

// firstBand returns the nearest band in the table whose flag is set.
func firstBand(f domain.Feature, bands []content.BandTier) (content.BandTier, bool) {
	for _, bt := range bands {
		if f.Flag(bt.Band) {
			return bt, true
		}
	}
	return content.BandTier{}, false
}

func checkDistance(key string, index int, f domain.Feature) error {
	if f.DistanceM != nil && (*f.DistanceM < 0 || math.IsNaN(*f.DistanceM)) {
		return malformed(key, index, "distance %v is not a non-negative number", *f.DistanceM)
	}
	return nil
}

func checkCoverage(key string, index int, f domain.Feature) error {
	if f.PercentageCoverage == nil {
		return malformed(key, index, "missing percentage coverage")
	}
	if pc := *f.PercentageCoverage; pc < 0 || pc > 100 || math.IsNaN(pc) {
		return malformed(key, index, "percentage coverage %v outside 0..100", pc)
	}
	return nil
}

type bandClassifier struct {
	key   string
	bands []content.BandTier
}

func (c *bandClassifier) Classify(index int, f domain.Feature) (Classification, bool, error) {
	if err := checkDistance(c.key, index, f); err != nil {
		return Classification{}, false, err
	}
	bt, ok := firstBand(f, c.bands)
	if !ok {
		return Classification{}, false, nil
	}
	return Classification{Tier: bt.Tier, Band: bt.Band}, true, nil
}

func gradeOf(f domain.Feature) *string  { return f.Grade }
func statusOf(f domain.Feature) *string { return f.Status }

// variantClassifier picks a band table by grade or status before applying bands.
type variantClassifier struct {
	key      string
	field    string
	value    func(domain.Feature) *string
	variants []content.Variant
}

func (c *variantClassifier) Classify(index int, f domain.Feature) (Classification, bool, error) {
	if err := checkDistance(c.key, index, f); err != nil {
		return Classification{}, false, err
	}
	v := c.value(f)
	if v == nil || strings.TrimSpace(*v) == "" {
		return Classification{}, false, malformed(c.key, index, "missing %s", c.field)
	}
	variant, ok := c.variantFor(*v)
	if !ok {
		return Classification{}, false, malformed(c.key, index, "unrecognised %s %q", c.field, *v)
	}

	var out Classification
	if bt, ok := firstBand(f, variant.Bands); ok {
		out = Classification{Tier: bt.Tier, Band: bt.Band, Label: variant.Label}
	} else if variant.Fallback != nil {
		out = Classification{Tier: *variant.Fallback, Band: domain.BandNearby, Label: variant.Label}
	} else {
		return Classification{}, false, nil
	}
	if variant.Cap != nil {
		out.Tier = domain.MinTier(out.Tier, *variant.Cap)
	}
	return out, true, nil
}

func (c *variantClassifier) variantFor(value string) (content.Variant, bool) {
	for _, v := range c.variants {
		if v.Matches(value) {
			return v, true
		}
	}
	return content.Variant{}, false
}

// coverageClassifier sums percentage coverage across the family, capped at 100.
type coverageClassifier struct {
	key        string
	thresholds []content.CoverageThreshold
}

func (c *coverageClassifier) ClassifyFamily(indexes []int, fs []domain.Feature) (Classification, bool, error) {
	if len(fs) == 0 {
		return Classification{}, false, nil
	}
	var total float64
	for i, f := range fs {
		if err := checkCoverage(c.key, indexes[i], f); err != nil {
			return Classification{}, false, err
		}
		total += *f.PercentageCoverage
	}
	total = math.Min(total, 100)

	for _, th := range c.thresholds {
		if total >= th.AtLeast {
			return Classification{Tier: th.Tier, Band: domain.BandOnSite, Coverage: total}, true, nil
		}
	}
	return Classification{}, false, nil
}
