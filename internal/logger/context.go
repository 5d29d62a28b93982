package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are added to every record logged with a context that carries them.
type LogFields struct {
	AnalysisID string // id stamped on the report being built
	BatchItem  string // input name in batch runs
	Component  string // e.g. "siterisk.assessment"
}

// WithLogFields merges fields into the context. Non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.AnalysisID != "" {
		merged.AnalysisID = fields.AnalysisID
	}
	if fields.BatchItem != "" {
		merged.BatchItem = fields.BatchItem
	}
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}
