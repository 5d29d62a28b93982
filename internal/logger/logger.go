package logger

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"

	"siterisk/internal/config"
)

// Setup installs the process-wide slog default writing to w.
func Setup(cfg config.Config, w io.Writer) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.IsDevelopment() {
		opts.Level = slog.LevelDebug
	}

	switch {
	case cfg.IsProduction() && cfg.OTel.Enabled():
		handler = NewTraceHandler(otelslog.NewHandler(
			cfg.OTel.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		))
	case cfg.IsProduction():
		handler = NewTraceHandler(slog.NewJSONHandler(w, opts))
	default:
		handler = NewTraceHandler(slog.NewTextHandler(w, opts))
	}

	slog.SetDefault(slog.New(handler))
}

// TraceHandler adds span identifiers and context log fields to every record.
type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.AnalysisID != "" {
		r.AddAttrs(slog.String("analysis_id", fields.AnalysisID))
	}
	if fields.BatchItem != "" {
		r.AddAttrs(slog.String("batch_item", fields.BatchItem))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
