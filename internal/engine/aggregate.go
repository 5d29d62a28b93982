package engine

import "siterisk/internal/domain"

// Aggregate combines discipline records into the site report. Discipline order
// is kept as given; it is the display order of the report.
func Aggregate(disciplines []domain.Discipline) domain.CombinedReport {
	report := domain.CombinedReport{
		OverallRisk:        domain.LowRisk,
		RiskByDiscipline:   make([]domain.DisciplineRisk, 0, len(disciplines)),
		Disciplines:        disciplines,
		DesignationSummary: []string{},
		TriggeredRules:     []domain.TriggeredRule{},
	}
	if report.Disciplines == nil {
		report.Disciplines = []domain.Discipline{}
	}

	var risks []domain.Tier
	for _, d := range disciplines {
		if d.OverallRisk != nil {
			risks = append(risks, *d.OverallRisk)
			report.RiskByDiscipline = append(report.RiskByDiscipline, domain.DisciplineRisk{
				Name:    d.Name,
				Risk:    *d.OverallRisk,
				Summary: d.OverallRisk.Summary(),
			})
		}
		report.DesignationSummary = append(report.DesignationSummary, d.DesignationSummary...)
		report.TriggeredRules = append(report.TriggeredRules, d.TriggeredRules...)
	}
	if top, ok := domain.MaxTier(risks...); ok {
		report.OverallRisk = top
	}
	report.OverallSummary = report.OverallRisk.Summary()
	return report
}
