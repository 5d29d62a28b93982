package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siterisk/internal/domain"
)

func TestAggregate(t *testing.T) {
	disciplines := []domain.Discipline{
		{
			Name:               "Landscape",
			OverallRisk:        domain.Ptr(domain.MediumRisk),
			TriggeredRules:     []domain.TriggeredRule{{ID: "green_belt_on_site"}},
			DesignationSummary: []string{"Green Belt: 1 found"},
		},
		{
			Name:               "Ecology",
			OverallRisk:        domain.Ptr(domain.HighRisk),
			TriggeredRules:     []domain.TriggeredRule{{ID: "sssi_within_500m"}},
			DesignationSummary: []string{"Sites of Special Scientific Interest: 1 found"},
		},
		{Name: "Trees"},
	}

	report := Aggregate(disciplines)

	assert.Equal(t, domain.HighRisk, report.OverallRisk)
	assert.Equal(t, domain.HighRisk.Summary(), report.OverallSummary)
	require.Len(t, report.RiskByDiscipline, 2)
	assert.Equal(t, "Landscape", report.RiskByDiscipline[0].Name)
	assert.Equal(t, domain.MediumRisk, report.RiskByDiscipline[0].Risk)
	assert.Equal(t, "Ecology", report.RiskByDiscipline[1].Name)
	assert.Len(t, report.Disciplines, 3)
	assert.Equal(t, []string{
		"Green Belt: 1 found",
		"Sites of Special Scientific Interest: 1 found",
	}, report.DesignationSummary)
	assert.Len(t, report.TriggeredRules, 2)
}

func TestAggregateWithoutRisksDefaultsToLow(t *testing.T) {
	report := Aggregate(nil)

	assert.Equal(t, domain.LowRisk, report.OverallRisk)
	assert.NotNil(t, report.Disciplines)
	assert.NotNil(t, report.RiskByDiscipline)
	assert.Empty(t, report.RiskByDiscipline)
	assert.NotNil(t, report.TriggeredRules)
}
