package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"siterisk/internal/content"
	"siterisk/internal/ports"
)

// maxBodyBytes bounds assessment payloads.
const maxBodyBytes = 10 << 20

// Server exposes the assessment service over HTTP.
type Server struct {
	assessor  ports.Assessor
	catalogue *content.Catalogue
}

func New(assessor ports.Assessor, catalogue *content.Catalogue) *Server {
	return &Server{assessor: assessor, catalogue: catalogue}
}

// Routes returns the router with all endpoints and the standard middleware stack.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealthz)
	r.Get("/designations", s.getDesignations)
	r.Post("/assessments", s.postAssessment)
	r.Post("/assessments/site", s.postSiteAssessment)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getDesignations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCatalogueResponse(s.catalogue))
}

func (s *Server) postAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	report, err := s.assessor.Assess(r.Context(), req.Features)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) postSiteAssessment(w http.ResponseWriter, r *http.Request) {
	var req siteRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	report, err := s.assessor.AssessSite(r.Context(), req.Site)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
