package httpadapter

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"siterisk/internal/logger"
)

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ctx := logger.WithLogFields(r.Context(), logger.LogFields{Component: "siterisk.http"})

		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(ctx),
			"client_ip", r.RemoteAddr,
		}
		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	})
}
