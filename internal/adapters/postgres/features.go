package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"siterisk/internal/content"
	"siterisk/internal/domain"
)

var tracer = otel.Tracer("siterisk/postgres")

var queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "siterisk",
	Subsystem: "spatial",
	Name:      "query_duration_seconds",
	Help:      "Spatial designation query latency in seconds",
	Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
}, []string{"designation", "status"})

// featureRow is the column contract of every designation function. Missing
// proximity columns read as false.
type featureRow struct {
	Name               *string  `db:"name"`
	Grade              *string  `db:"grade"`
	Status             *string  `db:"status"`
	OnSite             *bool    `db:"on_site"`
	Within50m          *bool    `db:"within_50m"`
	Within100m         *bool    `db:"within_100m"`
	Within250m         *bool    `db:"within_250m"`
	Within500m         *bool    `db:"within_500m"`
	Within1km          *bool    `db:"within_1km"`
	Within3km          *bool    `db:"within_3km"`
	Within5km          *bool    `db:"within_5km"`
	Between5_10km      *bool    `db:"between_5_10km"`
	Within10km         *bool    `db:"within_10km"`
	Between10_15km     *bool    `db:"between_10_15km"`
	DistanceM          *float64 `db:"dist_m"`
	Direction          *string  `db:"direction"`
	PercentageCoverage *float64 `db:"percentage_coverage"`
}

func (r featureRow) feature(designationType string) domain.Feature {
	f := domain.Feature{
		DesignationType:    designationType,
		Grade:              r.Grade,
		Status:             r.Status,
		DistanceM:          r.DistanceM,
		PercentageCoverage: r.PercentageCoverage,
	}
	if r.Name != nil {
		f.Name = *r.Name
	}
	if r.Direction != nil {
		f.Direction = *r.Direction
	}
	flags := []struct {
		band domain.Band
		set  *bool
	}{
		{domain.BandOnSite, r.OnSite},
		{domain.BandWithin50m, r.Within50m},
		{domain.BandWithin100m, r.Within100m},
		{domain.BandWithin250m, r.Within250m},
		{domain.BandWithin500m, r.Within500m},
		{domain.BandWithin1km, r.Within1km},
		{domain.BandWithin3km, r.Within3km},
		{domain.BandWithin5km, r.Within5km},
		{domain.BandBetween5And10km, r.Between5_10km},
		{domain.BandWithin10km, r.Within10km},
		{domain.BandBetween10And15km, r.Between10_15km},
	}
	for _, fl := range flags {
		f.SetFlag(fl.band, fl.set != nil && *fl.set)
	}
	return f
}

// querier is the subset of pgxpool.Pool used for designation queries.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type fetchFunc func(ctx context.Context, d content.Designation, site json.RawMessage) ([]featureRow, error)

// SpatialSource queries one PostGIS function per designation type.
type SpatialSource struct {
	designations []content.Designation
	concurrency  int
	fetch        fetchFunc
}

// NewSpatialSource builds a source over every designation in the catalogue.
// concurrency bounds in-flight queries; values below 1 mean one at a time.
func NewSpatialSource(db *DB, c *content.Catalogue, concurrency int) *SpatialSource {
	return newSpatialSource(c, concurrency, queryDesignation(db.Pool))
}

func newSpatialSource(c *content.Catalogue, concurrency int, fetch fetchFunc) *SpatialSource {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SpatialSource{
		designations: c.Designations,
		concurrency:  concurrency,
		fetch:        fetch,
	}
}

// Features fans out the designation queries and returns features in catalogue
// order. The first failing query cancels the rest.
func (s *SpatialSource) Features(ctx context.Context, site json.RawMessage) ([]domain.Feature, error) {
	results := make([][]domain.Feature, len(s.designations))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, d := range s.designations {
		g.Go(func() error {
			rows, err := s.fetchTimed(gctx, d, site)
			if err != nil {
				return fmt.Errorf("querying %s: %w", d.Source, err)
			}
			fs := make([]domain.Feature, len(rows))
			for j, r := range rows {
				fs[j] = r.feature(d.Key)
			}
			results[i] = fs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.Feature
	for _, fs := range results {
		out = append(out, fs...)
	}
	return out, nil
}

func (s *SpatialSource) fetchTimed(ctx context.Context, d content.Designation, site json.RawMessage) ([]featureRow, error) {
	ctx, span := tracer.Start(ctx, "spatial.query")
	defer span.End()
	span.SetAttributes(
		attribute.String("designation.type", d.Key),
		attribute.String("db.function", d.Source),
	)

	start := time.Now()
	rows, err := s.fetch(ctx, d, site)
	status := "ok"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	queryDuration.WithLabelValues(d.Key, status).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("feature.count", len(rows)))
	return rows, err
}

func queryDesignation(q querier) fetchFunc {
	return func(ctx context.Context, d content.Designation, site json.RawMessage) ([]featureRow, error) {
		sql := fmt.Sprintf("SELECT * FROM %s($1)", pgx.Identifier{d.Source}.Sanitize())
		rows, err := q.Query(ctx, sql, string(site))
		if err != nil {
			return nil, err
		}
		return pgx.CollectRows(rows, pgx.RowToStructByNameLax[featureRow])
	}
}
