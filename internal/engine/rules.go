package engine

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"siterisk/internal/content"
	"siterisk/internal/domain"
)

type indexedFeature struct {
	index   int
	feature domain.Feature
}

// bandGroup collects the features of one designation type that matched the same band.
type bandGroup struct {
	band    domain.Band
	tiers   []domain.Tier
	labels  []string
	nearest *domain.Feature
	count   int
}

func (g *bandGroup) add(c Classification, f domain.Feature) {
	g.count++
	g.tiers = append(g.tiers, c.Tier)
	if c.Label != "" && !slices.Contains(g.labels, c.Label) {
		g.labels = append(g.labels, c.Label)
	}
	if g.nearest == nil || closer(f, *g.nearest) {
		g.nearest = &f
	}
}

// closer reports whether a has a known distance smaller than b's.
func closer(a, b domain.Feature) bool {
	return a.DistanceM != nil && (b.DistanceM == nil || *a.DistanceM < *b.DistanceM)
}

// buildRules classifies every feature of one designation type and turns each
// matched band into a TriggeredRule, nearest band first.
func buildRules(r registration, items []indexedFeature) ([]domain.TriggeredRule, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if r.family != nil {
		return buildFamilyRule(r, items)
	}

	groups := make(map[domain.Band]*bandGroup)
	for _, it := range items {
		c, matched, err := r.single.Classify(it.index, it.feature)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		g, ok := groups[c.Band]
		if !ok {
			g = &bandGroup{band: c.Band}
			groups[c.Band] = g
		}
		g.add(c, it.feature)
	}

	ordered := make([]*bandGroup, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].band.Order() < ordered[j].band.Order()
	})

	rules := make([]domain.TriggeredRule, 0, len(ordered))
	for _, g := range ordered {
		level, _ := domain.MaxTier(g.tiers...)
		rules = append(rules, newRule(r.designation, g, level, describeGroup(g)))
	}
	return rules, nil
}

func buildFamilyRule(r registration, items []indexedFeature) ([]domain.TriggeredRule, error) {
	indexes := make([]int, len(items))
	features := make([]domain.Feature, len(items))
	for i, it := range items {
		indexes[i] = it.index
		features[i] = it.feature
	}
	c, matched, err := r.family.ClassifyFamily(indexes, features)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, nil
	}
	g := &bandGroup{band: c.Band, count: len(items)}
	findings := fmt.Sprintf("%.1f%% of the site is covered by %s.", c.Coverage, countPhrase(len(items), "zone", "zones"))
	return []domain.TriggeredRule{newRule(r.designation, g, c.Tier, findings)}, nil
}

func newRule(d content.Designation, g *bandGroup, level domain.Tier, findings string) domain.TriggeredRule {
	rule := domain.TriggeredRule{
		ID:              domain.RuleID(d.Key, g.band),
		DesignationType: d.Key,
		Band:            g.band,
		Discipline:      d.Discipline,
		Title:           d.Title + " " + g.band.Phrase(),
		Level:           level,
		Findings:        findings,
		Recommendation:  d.Recommendation(level),
		FeatureCount:    g.count,
	}
	if g.nearest != nil && g.nearest.DistanceM != nil {
		rule.NearestDistance = domain.Ptr(*g.nearest.DistanceM)
	}
	return rule
}

func describeGroup(g *bandGroup) string {
	var b strings.Builder
	b.WriteString(countPhrase(g.count, "feature", "features"))
	b.WriteString(" ")
	b.WriteString(g.band.Phrase())
	if len(g.labels) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(g.labels, ", "))
	}
	b.WriteString(".")

	if n := g.nearest; n != nil && (n.Name != "" || n.DistanceM != nil) {
		b.WriteString(" Nearest: ")
		var parts []string
		if n.Name != "" {
			parts = append(parts, n.Name)
		}
		if n.DistanceM != nil {
			d := formatDistance(*n.DistanceM)
			if n.Direction != "" {
				d += " " + n.Direction
			}
			parts = append(parts, d)
		}
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}
	return b.String()
}

// summarize produces the plain-language count line for one designation type.
func summarize(d content.Designation, items []indexedFeature) string {
	parts := []string{fmt.Sprintf("%d found", len(items))}

	if d.Classifier == content.KindCoverage {
		var total float64
		for _, it := range items {
			if it.feature.PercentageCoverage != nil {
				total += *it.feature.PercentageCoverage
			}
		}
		if total > 100 {
			total = 100
		}
		parts = append(parts, fmt.Sprintf("%.1f%% site coverage", total))
		return d.Title + ": " + strings.Join(parts, ", ")
	}

	onSite := 0
	var nearest *float64
	for _, it := range items {
		if it.feature.OnSite {
			onSite++
		}
		if dm := it.feature.DistanceM; dm != nil && (nearest == nil || *dm < *nearest) {
			nearest = dm
		}
	}
	if onSite > 0 {
		parts = append(parts, fmt.Sprintf("%d on site", onSite))
	}
	if nearest != nil {
		parts = append(parts, "nearest "+formatDistance(*nearest))
	}
	return d.Title + ": " + strings.Join(parts, ", ")
}

func formatDistance(m float64) string {
	if m < 1000 {
		return fmt.Sprintf("%.0fm", m)
	}
	return fmt.Sprintf("%.1fkm", m/1000)
}

func countPhrase(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", n, plural)
}
