package batchrunner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"siterisk/internal/logger"
	"siterisk/internal/ports"
)

// Run claims jobs from src and assesses them on concurrency workers until the
// source is exhausted or ctx is cancelled. It returns once every claimed job
// has been reported to sink. A failing or unreadable job never stops the
// batch; a failing source does.
func Run(ctx context.Context, src ports.JobSource, assessor ports.Assessor, sink ports.ResultSink, concurrency int) error {
	if concurrency < 1 {
		concurrency = 1
	}
	jobsCh := make(chan ports.AssessmentJob, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for job := range jobsCh {
				if err := Process(ctx, assessor, sink, job); err != nil {
					slog.ErrorContext(ctx, "recording batch result failed", "worker", idx, "job", job.Name, "error", err)
				}
			}
		}(i)
	}

	var dispatchErr error
dispatch:
	for {
		job, found, err := src.Next(ctx)
		if err != nil {
			dispatchErr = fmt.Errorf("claiming next job: %w", err)
			break
		}
		if !found {
			break
		}
		select {
		case jobsCh <- job:
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		}
	}
	close(jobsCh)
	wg.Wait()
	return dispatchErr
}

// Process assesses a single job and reports the outcome. The returned error
// is the sink's; assessment failures go to sink.Failed.
func Process(ctx context.Context, assessor ports.Assessor, sink ports.ResultSink, job ports.AssessmentJob) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{BatchItem: job.Name, Component: "siterisk.batch"})
	if job.LoadErr != nil {
		slog.WarnContext(ctx, "batch job unreadable", "error", job.LoadErr)
		return sink.Failed(ctx, job, job.LoadErr)
	}
	report, err := assessor.Assess(ctx, job.Features)
	if err != nil {
		slog.WarnContext(ctx, "batch job failed", "error", err)
		return sink.Failed(ctx, job, err)
	}
	return sink.Completed(ctx, job, report)
}
