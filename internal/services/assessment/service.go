package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"siterisk/internal/content"
	"siterisk/internal/domain"
	"siterisk/internal/engine"
	"siterisk/internal/logger"
	"siterisk/internal/ports"
)

// ErrNoSpatialSource is returned by AssessSite when no spatial database is
// configured.
var ErrNoSpatialSource = errors.New("spatial source not configured")

var tracer = otel.Tracer("siterisk/assessment")

type Service struct {
	engine *engine.Engine
	source ports.FeatureSource
	newID  func() string
}

// New builds the service. source may be nil, in which case only feature
// payloads can be assessed.
func New(e *engine.Engine, source ports.FeatureSource) *Service {
	return &Service{
		engine: e,
		source: source,
		newID:  func() string { return uuid.NewString() },
	}
}

// Catalogue exposes the designation catalogue reports are built from.
func (s *Service) Catalogue() *content.Catalogue {
	return s.engine.Catalogue()
}

// Assess builds a report from already-queried features.
func (s *Service) Assess(ctx context.Context, features []domain.Feature) (*domain.CombinedReport, error) {
	id := s.newID()
	ctx = logger.WithLogFields(ctx, logger.LogFields{AnalysisID: id, Component: "siterisk.assessment"})
	ctx, span := tracer.Start(ctx, "assessment.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("analysis.id", id),
		attribute.Int("feature.count", len(features)),
	)

	start := time.Now()
	report, err := s.engine.Build(features)
	buildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		failures.WithLabelValues(failureKind(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "assessment rejected", "error", err)
		return nil, err
	}

	report.Metadata.AnalysisID = id
	reportsBuilt.WithLabelValues(string(report.OverallRisk)).Inc()
	span.SetAttributes(
		attribute.String("overall.risk", string(report.OverallRisk)),
		attribute.Int("rule.count", report.Metadata.RuleCount),
	)
	slog.InfoContext(ctx, "report built",
		"overall_risk", report.OverallRisk,
		"features", len(features),
		"rules", report.Metadata.RuleCount)
	return report, nil
}

// AssessSite queries the spatial layer for a GeoJSON boundary and assesses the
// features it returns.
func (s *Service) AssessSite(ctx context.Context, site json.RawMessage) (*domain.CombinedReport, error) {
	if s.source == nil {
		failures.WithLabelValues("no_spatial_source").Inc()
		return nil, ErrNoSpatialSource
	}

	ctx, span := tracer.Start(ctx, "assessment.site")
	defer span.End()

	features, err := s.source.Features(ctx, site)
	if err != nil {
		failures.WithLabelValues("spatial").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetching features: %w", err)
	}
	return s.Assess(ctx, features)
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, engine.ErrUnknownDesignationType):
		return "unknown_designation"
	case errors.Is(err, engine.ErrMalformedFeature):
		return "malformed_feature"
	default:
		return "other"
	}
}
