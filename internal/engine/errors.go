package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDesignationType is returned for features whose designation type
	// has no registered classifier.
	ErrUnknownDesignationType = errors.New("unknown designation type")
	// ErrMalformedFeature is returned when a feature lacks the fields its
	// classifier needs.
	ErrMalformedFeature = errors.New("malformed feature")
)

// FeatureError identifies the offending feature by designation type and its
// index in the input list.
type FeatureError struct {
	DesignationType string
	Index           int
	Reason          string
	Err             error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%v: feature %d (%s): %s", e.Err, e.Index, e.DesignationType, e.Reason)
}

func (e *FeatureError) Unwrap() error { return e.Err }

func malformed(designationType string, index int, format string, args ...any) error {
	return &FeatureError{
		DesignationType: designationType,
		Index:           index,
		Reason:          fmt.Sprintf(format, args...),
		Err:             ErrMalformedFeature,
	}
}
