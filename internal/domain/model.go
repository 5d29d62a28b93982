package domain

// Core domain models for one site assessment. Everything here is built fresh
// per request; nothing is persisted.

// Feature is one designated feature returned by the spatial query layer for a
// site boundary.
type Feature struct {
	DesignationType string `json:"designationType" validate:"required"`
	Name            string `json:"name"`

	// Grade carries the type-specific code: listed building grade, ALC grade, etc.
	Grade  *string `json:"grade,omitempty"`
	Status *string `json:"status,omitempty"`

	OnSite         bool `json:"onSite,omitempty"`
	Within50m      bool `json:"within50m,omitempty"`
	Within100m     bool `json:"within100m,omitempty"`
	Within250m     bool `json:"within250m,omitempty"`
	Within500m     bool `json:"within500m,omitempty"`
	Within1km      bool `json:"within1km,omitempty"`
	Within3km      bool `json:"within3km,omitempty"`
	Within5km      bool `json:"within5km,omitempty"`
	Between5_10km  bool `json:"between5_10km,omitempty"`
	Within10km     bool `json:"within10km,omitempty"`
	Between10_15km bool `json:"between10_15km,omitempty"`

	DistanceM          *float64 `json:"distanceM,omitempty"`
	Direction          string   `json:"direction,omitempty"`
	PercentageCoverage *float64 `json:"percentageCoverage,omitempty"`
}

// Flag reports whether the proximity flag for band b is set. Flags the
// spatial layer omits read as false.
func (f Feature) Flag(b Band) bool {
	switch b {
	case BandOnSite:
		return f.OnSite
	case BandWithin50m:
		return f.Within50m
	case BandWithin100m:
		return f.Within100m
	case BandWithin250m:
		return f.Within250m
	case BandWithin500m:
		return f.Within500m
	case BandWithin1km:
		return f.Within1km
	case BandWithin3km:
		return f.Within3km
	case BandWithin5km:
		return f.Within5km
	case BandBetween5And10km:
		return f.Between5_10km
	case BandWithin10km:
		return f.Within10km
	case BandBetween10And15km:
		return f.Between10_15km
	}
	return false
}

// SetFlag sets the proximity flag for band b. Unknown bands are ignored.
func (f *Feature) SetFlag(b Band, v bool) {
	switch b {
	case BandOnSite:
		f.OnSite = v
	case BandWithin50m:
		f.Within50m = v
	case BandWithin100m:
		f.Within100m = v
	case BandWithin250m:
		f.Within250m = v
	case BandWithin500m:
		f.Within500m = v
	case BandWithin1km:
		f.Within1km = v
	case BandWithin3km:
		f.Within3km = v
	case BandWithin5km:
		f.Within5km = v
	case BandBetween5And10km:
		f.Between5_10km = v
	case BandWithin10km:
		f.Within10km = v
	case BandBetween10And15km:
		f.Between10_15km = v
	}
}

// TriggeredRule is the record produced when features of one designation type
// match a band.
type TriggeredRule struct {
	ID              string   `json:"id"`
	DesignationType string   `json:"designationType"`
	Band            Band     `json:"band"`
	Discipline      string   `json:"discipline"`
	Title           string   `json:"title"`
	Level           Tier     `json:"level"`
	Findings        string   `json:"findings"`
	Recommendation  *string  `json:"recommendation"`
	FeatureCount    int      `json:"featureCount"`
	NearestDistance *float64 `json:"nearestDistanceM,omitempty"`
}

// Discipline groups the rules of related designation types.
type Discipline struct {
	Name           string          `json:"name"`
	OverallRisk    *Tier           `json:"overallRisk"`
	TriggeredRules []TriggeredRule `json:"triggeredRules"`

	DisciplineRecommendation        *string  `json:"disciplineRecommendation,omitempty"`
	DefaultTriggeredRecommendations []string `json:"defaultTriggeredRecommendations,omitempty"`
	DefaultNoRulesRecommendations   []string `json:"defaultNoRulesRecommendations,omitempty"`

	// Recommendations is the deduplicated list shown to the user.
	Recommendations    []string `json:"recommendations"`
	DesignationSummary []string `json:"designationSummary"`
}

// DisciplineRisk pairs a discipline with its overall tier for the summary table.
type DisciplineRisk struct {
	Name    string      `json:"name"`
	Risk    Tier        `json:"risk"`
	Summary TierSummary `json:"summary"`
}

// Metadata carries counts and version tags for a report.
type Metadata struct {
	AnalysisID      string `json:"analysisId,omitempty"`
	EngineVersion   string `json:"engineVersion"`
	ContentVersion  string `json:"contentVersion"`
	FeatureCount    int    `json:"featureCount"`
	RuleCount       int    `json:"ruleCount"`
	DisciplineCount int    `json:"disciplineCount"`
}

// CombinedReport is the final site-wide assessment.
type CombinedReport struct {
	OverallRisk        Tier             `json:"overallRisk"`
	OverallSummary     TierSummary      `json:"overallSummary"`
	RiskByDiscipline   []DisciplineRisk `json:"riskByDiscipline"`
	Disciplines        []Discipline     `json:"disciplines"`
	DesignationSummary []string         `json:"designationSummary"`
	TriggeredRules     []TriggeredRule  `json:"triggeredRules"`
	Metadata           Metadata         `json:"metadata"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
