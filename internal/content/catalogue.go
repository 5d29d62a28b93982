package content

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"siterisk/internal/domain"
)

// ClassifierKind selects how a designation type maps features to tiers.
type ClassifierKind string

const (
	// KindBands evaluates one nearest-first band table.
	KindBands ClassifierKind = "bands"
	// KindGraded picks a band table by the feature's grade.
	KindGraded ClassifierKind = "graded"
	// KindStatus picks a band table by the feature's planning status.
	KindStatus ClassifierKind = "status"
	// KindCoverage thresholds the summed percentage coverage of all features.
	KindCoverage ClassifierKind = "coverage"
)

func (k *ClassifierKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch kind := ClassifierKind(s); kind {
	case KindBands, KindGraded, KindStatus, KindCoverage:
		*k = kind
		return nil
	default:
		return fmt.Errorf("invalid classifier %q", s)
	}
}

// Catalogue is the full set of disciplines and designation types.
type Catalogue struct {
	Version      string        `yaml:"version"`
	Disciplines  []Discipline  `yaml:"disciplines"`
	Designations []Designation `yaml:"designations"`

	designationIndex map[string]int
	disciplineIndex  map[string]int
}

type Discipline struct {
	Name string `yaml:"name"`
	// Recommendation, when set, replaces both default lists.
	Recommendation                  string   `yaml:"recommendation"`
	DefaultTriggeredRecommendations []string `yaml:"defaultTriggeredRecommendations"`
	DefaultNoRulesRecommendations   []string `yaml:"defaultNoRulesRecommendations"`
	// Optional disciplines are left out of a report when none of their rules fired.
	Optional bool `yaml:"optional"`
}

type BandTier struct {
	Band domain.Band `yaml:"band"`
	Tier domain.Tier `yaml:"tier"`
}

// Variant is a band table selected by a grade or status value.
type Variant struct {
	Match    []string     `yaml:"match"`
	Label    string       `yaml:"label"`
	Bands    []BandTier   `yaml:"bands"`
	Cap      *domain.Tier `yaml:"cap"`
	Fallback *domain.Tier `yaml:"fallback"`
}

// Matches reports whether v applies to the given grade or status value.
func (v Variant) Matches(value string) bool {
	value = normalizeMatch(value)
	for _, m := range v.Match {
		if normalizeMatch(m) == value {
			return true
		}
	}
	return false
}

type CoverageThreshold struct {
	AtLeast float64     `yaml:"atLeast"`
	Tier    domain.Tier `yaml:"tier"`
}

type Designation struct {
	Key             string                 `yaml:"key"`
	Title           string                 `yaml:"title"`
	Discipline      string                 `yaml:"discipline"`
	Source          string                 `yaml:"source"`
	Classifier      ClassifierKind         `yaml:"classifier"`
	Bands           []BandTier             `yaml:"bands"`
	Variants        []Variant              `yaml:"variants"`
	Coverage        []CoverageThreshold    `yaml:"coverage"`
	Recommendations map[domain.Tier]string `yaml:"recommendations"`
}

// Recommendation returns the text for tier t, or nil when none is authored.
func (d Designation) Recommendation(t domain.Tier) *string {
	text, ok := d.Recommendations[t]
	if !ok || strings.TrimSpace(text) == "" {
		return nil
	}
	return &text
}

// Default parses the catalogue embedded in the binary.
func Default() (*Catalogue, error) {
	c, err := Parse(DesignationCatalogue)
	if err != nil {
		return nil, fmt.Errorf("embedded designation catalogue: %w", err)
	}
	return c, nil
}

// Parse unmarshals and validates a catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks internal consistency and builds the lookup indexes. It must
// be called on hand-built catalogues before use.
func (c *Catalogue) Validate() error {
	var errs []error

	c.disciplineIndex = make(map[string]int, len(c.Disciplines))
	for i, d := range c.Disciplines {
		if d.Name == "" {
			errs = append(errs, fmt.Errorf("discipline %d has no name", i))
			continue
		}
		if _, dup := c.disciplineIndex[d.Name]; dup {
			errs = append(errs, fmt.Errorf("duplicate discipline %q", d.Name))
			continue
		}
		c.disciplineIndex[d.Name] = i
	}

	c.designationIndex = make(map[string]int, len(c.Designations))
	for i, d := range c.Designations {
		if d.Key == "" {
			errs = append(errs, fmt.Errorf("designation %d has no key", i))
			continue
		}
		if _, dup := c.designationIndex[d.Key]; dup {
			errs = append(errs, fmt.Errorf("duplicate designation %q", d.Key))
			continue
		}
		c.designationIndex[d.Key] = i
		if _, ok := c.disciplineIndex[d.Discipline]; !ok {
			errs = append(errs, fmt.Errorf("designation %q: unknown discipline %q", d.Key, d.Discipline))
		}
		if err := d.validate(); err != nil {
			errs = append(errs, fmt.Errorf("designation %q: %w", d.Key, err))
		}
	}

	return errors.Join(errs...)
}

func (d Designation) validate() error {
	for t := range d.Recommendations {
		if !t.Valid() {
			return fmt.Errorf("recommendation for invalid tier %q", t)
		}
	}
	switch d.Classifier {
	case KindBands:
		if len(d.Variants) > 0 || len(d.Coverage) > 0 {
			return errors.New("band classifier takes only bands")
		}
		return validateBands(d.Bands, false)
	case KindGraded, KindStatus:
		if len(d.Bands) > 0 || len(d.Coverage) > 0 {
			return fmt.Errorf("%s classifier takes only variants", d.Classifier)
		}
		if len(d.Variants) == 0 {
			return fmt.Errorf("%s classifier needs at least one variant", d.Classifier)
		}
		for i, v := range d.Variants {
			if len(v.Match) == 0 {
				return fmt.Errorf("variant %d matches nothing", i)
			}
			if err := validateBands(v.Bands, v.Fallback != nil); err != nil {
				return fmt.Errorf("variant %d: %w", i, err)
			}
		}
		return nil
	case KindCoverage:
		if len(d.Bands) > 0 || len(d.Variants) > 0 {
			return errors.New("coverage classifier takes only thresholds")
		}
		if len(d.Coverage) == 0 {
			return errors.New("coverage classifier needs thresholds")
		}
		for i, th := range d.Coverage {
			if i > 0 && th.AtLeast >= d.Coverage[i-1].AtLeast {
				return errors.New("coverage thresholds must be strictly descending")
			}
		}
		if last := d.Coverage[len(d.Coverage)-1]; last.AtLeast > 0 {
			return errors.New("coverage thresholds must end at 0")
		}
		return nil
	default:
		return errors.New("missing classifier")
	}
}

func validateBands(bands []BandTier, hasFallback bool) error {
	if len(bands) == 0 && !hasFallback {
		return errors.New("no bands and no fallback")
	}
	for i, bt := range bands {
		if bt.Band == domain.BandNearby {
			return errors.New("nearby band is reserved for fallbacks")
		}
		if i > 0 && bt.Band.Order() <= bands[i-1].Band.Order() {
			return fmt.Errorf("band %s listed out of order", bt.Band)
		}
	}
	return nil
}

// Designation looks up a designation type by key.
func (c *Catalogue) Designation(key string) (Designation, bool) {
	i, ok := c.designationIndex[key]
	if !ok {
		return Designation{}, false
	}
	return c.Designations[i], true
}

// Discipline looks up a discipline by name.
func (c *Catalogue) Discipline(name string) (Discipline, bool) {
	i, ok := c.disciplineIndex[name]
	if !ok {
		return Discipline{}, false
	}
	return c.Disciplines[i], true
}

// Order is the catalogue position of a designation type; unknown keys sort last.
func (c *Catalogue) Order(key string) int {
	if i, ok := c.designationIndex[key]; ok {
		return i
	}
	return len(c.Designations)
}

// DesignationsFor returns the designation types of one discipline in catalogue order.
func (c *Catalogue) DesignationsFor(discipline string) []Designation {
	var out []Designation
	for _, d := range c.Designations {
		if d.Discipline == discipline {
			out = append(out, d)
		}
	}
	return out
}

func normalizeMatch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
