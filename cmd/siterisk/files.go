package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"siterisk/internal/domain"
	"siterisk/internal/ports"
)

// decodeFeatures accepts either {"features": [...]} or a bare array.
func decodeFeatures(data []byte) ([]domain.Feature, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var fs []domain.Feature
		if err := json.Unmarshal(trimmed, &fs); err != nil {
			return nil, fmt.Errorf("decoding features: %w", err)
		}
		return fs, nil
	}
	var payload struct {
		Features []domain.Feature `json:"features"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, fmt.Errorf("decoding features: %w", err)
	}
	if payload.Features == nil {
		return nil, errors.New(`missing "features"`)
	}
	return payload.Features, nil
}

// fileSource reads one features file per job, in argument order. Unreadable
// files become failed jobs rather than stopping the batch.
type fileSource struct {
	mu    sync.Mutex
	paths []string
}

func newFileSource(paths []string) *fileSource {
	return &fileSource{paths: paths}
}

func (s *fileSource) Next(ctx context.Context) (ports.AssessmentJob, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.paths) == 0 {
		return ports.AssessmentJob{}, false, nil
	}
	path := s.paths[0]
	s.paths = s.paths[1:]

	job := ports.AssessmentJob{Name: path}
	data, err := os.ReadFile(path)
	if err != nil {
		job.LoadErr = err
		return job, true, nil
	}
	job.Features, job.LoadErr = decodeFeatures(data)
	return job, true, nil
}

// fileSink prints one summary line per job and optionally writes each report
// next to the others in outDir.
type fileSink struct {
	mu     sync.Mutex
	w      io.Writer
	outDir string
	failed int
}

func newFileSink(w io.Writer, outDir string) *fileSink {
	return &fileSink{w: w, outDir: outDir}
}

func (s *fileSink) Completed(ctx context.Context, job ports.AssessmentJob, report *domain.CombinedReport) error {
	if s.outDir != "" {
		if err := s.writeReport(job.Name, report); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "%s\t%s\t%d rules\n", job.Name, report.OverallRisk, report.Metadata.RuleCount)
	return err
}

func (s *fileSink) Failed(ctx context.Context, job ports.AssessmentJob, reason error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
	_, err := fmt.Fprintf(s.w, "%s\tFAILED\t%v\n", job.Name, reason)
	return err
}

func (s *fileSink) failures() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed
}

func (s *fileSink) writeReport(name string, report *domain.CombinedReport) error {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	f, err := os.Create(filepath.Join(s.outDir, base+".report.json"))
	if err != nil {
		return err
	}
	if err := writeIndented(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
