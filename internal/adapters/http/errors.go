package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"siterisk/internal/engine"
	"siterisk/internal/services/assessment"
)

type errorResponse struct {
	Error           string `json:"error"`
	DesignationType string `json:"designationType,omitempty"`
	Index           *int   `json:"index,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps service errors onto status codes. Feature errors identify
// the offending input so callers can correct it.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		reqErr  *requestError
		featErr *engine.FeatureError
	)
	switch {
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.As(err, &featErr):
		idx := featErr.Index
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:           err.Error(),
			DesignationType: featErr.DesignationType,
			Index:           &idx,
		})
	case errors.Is(err, assessment.ErrNoSpatialSource):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(ctx, "assessment failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
