package ports

import (
	"context"
	"encoding/json"

	"siterisk/internal/domain"
)

// FeatureSource runs the spatial queries for a site boundary and returns the
// designated features found around it. Geometry work happens behind this port.
type FeatureSource interface {
	Features(ctx context.Context, site json.RawMessage) ([]domain.Feature, error)
}

// Assessor builds combined risk reports.
type Assessor interface {
	Assess(ctx context.Context, features []domain.Feature) (*domain.CombinedReport, error)
	AssessSite(ctx context.Context, site json.RawMessage) (*domain.CombinedReport, error)
}
