package ports

import (
	"context"

	"siterisk/internal/domain"
)

// AssessmentJob is one unit of batch work: a named set of features.
type AssessmentJob struct {
	Name     string
	Features []domain.Feature
	// LoadErr is set when the job's input could not be read. Such jobs are
	// reported as failed without being assessed.
	LoadErr error
}

// JobSource hands out batch jobs until it is exhausted.
type JobSource interface {
	Next(ctx context.Context) (job AssessmentJob, found bool, err error)
}

// ResultSink receives the outcome of each batch job.
type ResultSink interface {
	Completed(ctx context.Context, job AssessmentJob, report *domain.CombinedReport) error
	Failed(ctx context.Context, job AssessmentJob, reason error) error
}
