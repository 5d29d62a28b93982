package engine

import (
	"siterisk/internal/content"
	"siterisk/internal/domain"
)

// Representatives keeps the most severe rule per designation type. Ties keep
// the rule seen first. Output follows the first appearance of each type.
func Representatives(rules []domain.TriggeredRule) []domain.TriggeredRule {
	pos := make(map[string]int)
	var out []domain.TriggeredRule
	for _, r := range rules {
		i, seen := pos[r.DesignationType]
		if !seen {
			pos[r.DesignationType] = len(out)
			out = append(out, r)
			continue
		}
		if domain.MoreSevere(r.Level, out[i].Level) {
			out[i] = r
		}
	}
	return out
}

// ReduceDiscipline builds the discipline record from the rules that fired for
// its designation types.
func ReduceDiscipline(def content.Discipline, rules []domain.TriggeredRule, summary []string) domain.Discipline {
	d := domain.Discipline{
		Name:                            def.Name,
		TriggeredRules:                  make([]domain.TriggeredRule, 0, len(rules)),
		DefaultTriggeredRecommendations: def.DefaultTriggeredRecommendations,
		DefaultNoRulesRecommendations:   def.DefaultNoRulesRecommendations,
		DesignationSummary:              make([]string, 0, len(summary)),
	}
	d.TriggeredRules = append(d.TriggeredRules, rules...)
	d.DesignationSummary = append(d.DesignationSummary, summary...)

	levels := make([]domain.Tier, len(rules))
	for i, r := range rules {
		levels[i] = r.Level
	}
	if top, ok := domain.MaxTier(levels...); ok {
		d.OverallRisk = &top
	}

	var candidates []string
	for _, r := range Representatives(rules) {
		if r.Recommendation != nil {
			candidates = append(candidates, *r.Recommendation)
		}
	}
	switch {
	case def.Recommendation != "":
		d.DisciplineRecommendation = domain.Ptr(def.Recommendation)
		candidates = append(candidates, def.Recommendation)
	case len(rules) > 0:
		candidates = append(candidates, def.DefaultTriggeredRecommendations...)
	default:
		candidates = append(candidates, def.DefaultNoRulesRecommendations...)
	}
	d.Recommendations = Dedupe(candidates)

	return d
}
