package engine

import (
	"fmt"

	"siterisk/internal/content"
	"siterisk/internal/domain"
)

// Version tags reports produced by this engine.
const Version = "siterisk-engine/1"

// Engine turns spatial-layer features into a combined risk report.
//
// An Engine is immutable after New and safe for concurrent use; every Build
// call works on its own copies of the input.
type Engine struct {
	catalogue     *content.Catalogue
	registrations map[string]registration
}

// New registers one classifier per designation type in the catalogue. The
// catalogue must already be validated.
func New(c *content.Catalogue) *Engine {
	e := &Engine{
		catalogue:     c,
		registrations: make(map[string]registration, len(c.Designations)),
	}
	for _, d := range c.Designations {
		e.registrations[d.Key] = newRegistration(d)
	}
	return e
}

// Catalogue returns the designation catalogue the engine was built from.
func (e *Engine) Catalogue() *content.Catalogue {
	return e.catalogue
}

// Build runs the full pipeline: classify, build rules, reduce per discipline,
// deduplicate recommendations and aggregate the site. Any feature error aborts
// the build; no partial report is returned.
func (e *Engine) Build(features []domain.Feature) (*domain.CombinedReport, error) {
	byType := make(map[string][]indexedFeature)
	for i, f := range features {
		if _, ok := e.registrations[f.DesignationType]; !ok {
			return nil, &FeatureError{
				DesignationType: f.DesignationType,
				Index:           i,
				Reason:          "no classifier registered",
				Err:             ErrUnknownDesignationType,
			}
		}
		byType[f.DesignationType] = append(byType[f.DesignationType], indexedFeature{index: i, feature: f})
	}
	for i, f := range features {
		if err := e.registrations[f.DesignationType].check(i, f); err != nil {
			return nil, fmt.Errorf("classifying %s: %w", f.DesignationType, err)
		}
	}

	rulesByDiscipline := make(map[string][]domain.TriggeredRule)
	summaryByDiscipline := make(map[string][]string)
	for _, d := range e.catalogue.Designations {
		items := byType[d.Key]
		if len(items) == 0 {
			continue
		}
		rules, err := buildRules(e.registrations[d.Key], items)
		if err != nil {
			return nil, fmt.Errorf("classifying %s: %w", d.Key, err)
		}
		rulesByDiscipline[d.Discipline] = append(rulesByDiscipline[d.Discipline], rules...)
		summaryByDiscipline[d.Discipline] = append(summaryByDiscipline[d.Discipline], summarize(d, items))
	}

	disciplines := make([]domain.Discipline, 0, len(e.catalogue.Disciplines))
	for _, def := range e.catalogue.Disciplines {
		rules := rulesByDiscipline[def.Name]
		if def.Optional && len(rules) == 0 {
			continue
		}
		disciplines = append(disciplines, ReduceDiscipline(def, rules, summaryByDiscipline[def.Name]))
	}

	report := Aggregate(disciplines)
	report.Metadata = domain.Metadata{
		EngineVersion:   Version,
		ContentVersion:  e.catalogue.Version,
		FeatureCount:    len(features),
		RuleCount:       len(report.TriggeredRules),
		DisciplineCount: len(report.Disciplines),
	}
	return &report, nil
}
