package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siterisk/internal/content"
	"siterisk/internal/domain"
)

func allFlags(f domain.Feature) domain.Feature {
	for _, b := range domain.Bands {
		f.SetFlag(b, true)
	}
	return f
}

// Every band table resolves an all-flags feature to its nearest entry.
func TestClassifyAllFlagsPicksNearestBand(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)

	for _, d := range c.Designations {
		r := newRegistration(d)
		switch d.Classifier {
		case content.KindBands:
			got, matched, err := r.single.Classify(0, allFlags(feature(d.Key)))
			require.NoError(t, err, d.Key)
			require.True(t, matched, d.Key)
			assert.Equal(t, d.Bands[0].Tier, got.Tier, d.Key)
			assert.Equal(t, d.Bands[0].Band, got.Band, d.Key)
		case content.KindGraded, content.KindStatus:
			for _, v := range d.Variants {
				f := allFlags(feature(d.Key))
				f.Grade = domain.Ptr(v.Match[0])
				f.Status = domain.Ptr(v.Match[0])
				got, matched, err := r.single.Classify(0, f)
				require.NoError(t, err, "%s %s", d.Key, v.Label)
				require.True(t, matched)
				want := v.Bands[0].Tier
				if v.Cap != nil {
					want = domain.MinTier(want, *v.Cap)
				}
				assert.Equal(t, want, got.Tier, "%s %s", d.Key, v.Label)
				assert.Equal(t, v.Label, got.Label)
			}
		}
	}
}

func TestClassifyWithoutFlagsMatchesNothing(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)

	for _, d := range c.Designations {
		r := newRegistration(d)
		switch d.Classifier {
		case content.KindBands:
			_, matched, err := r.single.Classify(0, feature(d.Key))
			require.NoError(t, err)
			assert.False(t, matched, d.Key)
		case content.KindGraded, content.KindStatus:
			for _, v := range d.Variants {
				f := feature(d.Key)
				f.Grade = domain.Ptr(v.Match[0])
				f.Status = domain.Ptr(v.Match[0])
				got, matched, err := r.single.Classify(0, f)
				require.NoError(t, err, "%s %s", d.Key, v.Match[0])
				if v.Fallback == nil {
					assert.False(t, matched, "%s %s", d.Key, v.Match[0])
					continue
				}
				want := *v.Fallback
				if v.Cap != nil {
					want = domain.MinTier(want, *v.Cap)
				}
				require.True(t, matched, "%s %s", d.Key, v.Match[0])
				assert.Equal(t, domain.BandNearby, got.Band)
				assert.Equal(t, want, got.Tier)
			}
		}
	}
}

func TestClassifyMostSevereVariantsWithoutFlagsMatchNothing(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)

	for _, f := range []domain.Feature{
		graded("listed_building", "I"),
		withStatus("renewables_development", "Operational"),
	} {
		d, ok := c.Designation(f.DesignationType)
		require.True(t, ok)
		_, matched, err := newRegistration(d).single.Classify(0, f)
		require.NoError(t, err)
		assert.False(t, matched, f.DesignationType)
	}
}

func TestClassifyBandTables(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		feature  domain.Feature
		wantTier domain.Tier
		wantBand domain.Band
	}{
		{"green belt on site", feature("green_belt", domain.BandOnSite, domain.BandWithin1km), domain.MediumHighRisk, domain.BandOnSite},
		{"green belt within 1km", feature("green_belt", domain.BandWithin1km), domain.LowRisk, domain.BandWithin1km},
		{"sssi within 500m", feature("sssi", domain.BandWithin500m, domain.BandWithin1km), domain.HighRisk, domain.BandWithin500m},
		{"sssi within 250m falls to 500m", feature("sssi", domain.BandWithin250m, domain.BandWithin500m), domain.HighRisk, domain.BandWithin500m},
		{"airport inside 5km", feature("airport", domain.BandWithin5km), domain.HighRisk, domain.BandWithin5km},
		{"airport 5 to 10km", feature("airport", domain.BandBetween5And10km), domain.MediumRisk, domain.BandBetween5And10km},
		{"airport 10 to 15km", feature("airport", domain.BandBetween10And15km), domain.MediumLowRisk, domain.BandBetween10And15km},
		{"listed grade I on site", graded("listed_building", "I", domain.BandOnSite), domain.Showstopper, domain.BandOnSite},
		{"listed grade II* within 1km", graded("listed_building", "Grade II*", domain.BandWithin1km), domain.MediumLowRisk, domain.BandWithin1km},
		{"listed grade II within 50m", graded("listed_building", "2", domain.BandWithin50m), domain.HighRisk, domain.BandWithin50m},
		{"alc grade 1", graded("agricultural_land_classification", "Grade 1", domain.BandOnSite), domain.HighRisk, domain.BandOnSite},
		{"alc grade 3b", graded("agricultural_land_classification", "3b", domain.BandOnSite), domain.MediumLowRisk, domain.BandOnSite},
		{"operational renewables on site", withStatus("renewables_development", "Operational", domain.BandOnSite), domain.Showstopper, domain.BandOnSite},
		{"consented renewables within 100m", withStatus("renewables_development", "Awaiting Construction", domain.BandWithin100m), domain.MediumHighRisk, domain.BandWithin100m},
		{"refused renewables on site is capped", withStatus("renewables_development", "Application Refused", domain.BandOnSite), domain.LowRisk, domain.BandOnSite},
		{"withdrawn renewables without flags falls back", withStatus("renewables_development", "Application Withdrawn"), domain.LowRisk, domain.BandNearby},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := c.Designation(tc.feature.DesignationType)
			require.True(t, ok)
			got, matched, err := newRegistration(d).single.Classify(0, tc.feature)
			require.NoError(t, err)
			require.True(t, matched)
			assert.Equal(t, tc.wantTier, got.Tier)
			assert.Equal(t, tc.wantBand, got.Band)
		})
	}
}

func TestClassifyCoverage(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)
	d, _ := c.Designation("drinking_water_groundwater_safeguard_zone")
	r := newRegistration(d)
	require.NotNil(t, r.family)

	tests := []struct {
		name         string
		coverages    []float64
		wantTier     domain.Tier
		wantCoverage float64
	}{
		{"small share", []float64{12.5}, domain.LowRisk, 12.5},
		{"zero still matches", []float64{0}, domain.LowRisk, 0},
		{"at medium threshold", []float64{40}, domain.MediumRisk, 40},
		{"summed across zones", []float64{30, 30, 25}, domain.ExtremelyHighRisk, 85},
		{"sum capped at 100", []float64{70, 60}, domain.ExtremelyHighRisk, 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			indexes := make([]int, len(tc.coverages))
			fs := make([]domain.Feature, len(tc.coverages))
			for i, pc := range tc.coverages {
				indexes[i] = i
				fs[i] = covering(d.Key, pc)
			}
			got, matched, err := r.family.ClassifyFamily(indexes, fs)
			require.NoError(t, err)
			require.True(t, matched)
			assert.Equal(t, tc.wantTier, got.Tier)
			assert.Equal(t, domain.BandOnSite, got.Band)
			assert.InDelta(t, tc.wantCoverage, got.Coverage, 1e-9)
		})
	}
}

func TestClassifyRejectsInvalidNumbers(t *testing.T) {
	c, err := content.Default()
	require.NoError(t, err)

	gb, _ := c.Designation("green_belt")
	f := feature("green_belt", domain.BandOnSite)
	f.DistanceM = domain.Ptr(math.NaN())
	_, _, err = newRegistration(gb).single.Classify(3, f)
	assert.ErrorIs(t, err, ErrMalformedFeature)

	dw, _ := c.Designation("drinking_water_surface_safeguard_zone")
	_, _, err = newRegistration(dw).family.ClassifyFamily(
		[]int{4, 7},
		[]domain.Feature{covering(dw.Key, 10), covering(dw.Key, -1)},
	)
	var fe *FeatureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 7, fe.Index)
}
