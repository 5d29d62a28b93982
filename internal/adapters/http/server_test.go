package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	httpadapter "siterisk/internal/adapters/http"
	"siterisk/internal/content"
	"siterisk/internal/domain"
	"siterisk/internal/engine"
	"siterisk/internal/services/assessment"
)

type stubSource struct {
	features []domain.Feature
	err      error
}

func (s *stubSource) Features(context.Context, json.RawMessage) ([]domain.Feature, error) {
	return s.features, s.err
}

type failingAssessor struct{ err error }

func (f failingAssessor) Assess(context.Context, []domain.Feature) (*domain.CombinedReport, error) {
	return nil, f.err
}

func (f failingAssessor) AssessSite(context.Context, json.RawMessage) (*domain.CombinedReport, error) {
	return nil, f.err
}

func do(router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var _ = Describe("Server", func() {
	var (
		catalogue *content.Catalogue
		source    *stubSource
		router    chi.Router
	)

	BeforeEach(func() {
		var err error
		catalogue, err = content.Default()
		Expect(err).NotTo(HaveOccurred())
		source = &stubSource{}
		svc := assessment.New(engine.New(catalogue), source)
		router = httpadapter.New(svc, catalogue).Routes()
	})

	Describe("GET /healthz", func() {
		It("returns ok", func() {
			w := do(router, http.MethodGet, "/healthz", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"status":"ok"}`))
		})
	})

	Describe("GET /designations", func() {
		It("lists tiers and disciplines in display order", func() {
			w := do(router, http.MethodGet, "/designations", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Version string `json:"version"`
				Tiers   []struct {
					Tier string `json:"tier"`
				} `json:"tiers"`
				Disciplines []struct {
					Name         string `json:"name"`
					Designations []struct {
						Key string `json:"key"`
					} `json:"designations"`
				} `json:"disciplines"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Version).To(Equal(catalogue.Version))
			Expect(resp.Tiers).To(HaveLen(7))
			Expect(resp.Tiers[0].Tier).To(Equal("showstopper"))
			Expect(resp.Disciplines[0].Name).To(Equal("Heritage"))
			Expect(resp.Disciplines[0].Designations[0].Key).To(Equal("listed_building"))
		})
	})

	Describe("POST /assessments", func() {
		It("returns the combined report", func() {
			w := do(router, http.MethodPost, "/assessments", map[string]any{
				"features": []map[string]any{
					{"designationType": "listed_building", "grade": "I", "onSite": true},
					{"designationType": "green_belt", "within1km": true},
				},
			})
			Expect(w.Code).To(Equal(http.StatusOK))

			var report domain.CombinedReport
			Expect(json.Unmarshal(w.Body.Bytes(), &report)).To(Succeed())
			Expect(report.OverallRisk).To(Equal(domain.Showstopper))
			Expect(report.RiskByDiscipline).To(HaveLen(2))
			Expect(report.Metadata.AnalysisID).NotTo(BeEmpty())
		})

		It("accepts an empty feature list", func() {
			w := do(router, http.MethodPost, "/assessments", `{"features":[]}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var report domain.CombinedReport
			Expect(json.Unmarshal(w.Body.Bytes(), &report)).To(Succeed())
			Expect(report.OverallRisk).To(Equal(domain.LowRisk))
		})

		It("returns 422 naming the unknown designation type", func() {
			w := do(router, http.MethodPost, "/assessments", map[string]any{
				"features": []map[string]any{
					{"designationType": "green_belt", "onSite": true},
					{"designationType": "lunar_crater", "onSite": true},
				},
			})
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))

			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["designationType"]).To(Equal("lunar_crater"))
			Expect(resp["index"]).To(BeEquivalentTo(1))
		})

		It("returns 422 for a malformed feature", func() {
			w := do(router, http.MethodPost, "/assessments", `{"features":[{"designationType":"listed_building","onSite":true}]}`)
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(w.Body.String()).To(ContainSubstring("malformed feature"))
		})

		It("returns 400 when features are missing", func() {
			w := do(router, http.MethodPost, "/assessments", `{}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 when a feature has no designation type", func() {
			w := do(router, http.MethodPost, "/assessments", `{"features":[{"onSite":true}]}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 on invalid JSON", func() {
			w := do(router, http.MethodPost, "/assessments", `{"features":`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /assessments/site", func() {
		It("assesses features from the spatial source", func() {
			f := domain.Feature{DesignationType: "sssi"}
			f.SetFlag(domain.BandWithin500m, true)
			source.features = []domain.Feature{f}

			w := do(router, http.MethodPost, "/assessments/site", `{"site":{"type":"Polygon","coordinates":[]}}`)
			Expect(w.Code).To(Equal(http.StatusOK))

			var report domain.CombinedReport
			Expect(json.Unmarshal(w.Body.Bytes(), &report)).To(Succeed())
			Expect(report.OverallRisk).To(Equal(domain.HighRisk))
		})

		It("returns 400 without a site", func() {
			w := do(router, http.MethodPost, "/assessments/site", `{}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 500 when the spatial source fails", func() {
			source.err = errors.New("connection reset")
			w := do(router, http.MethodPost, "/assessments/site", `{"site":{"type":"Polygon"}}`)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).NotTo(ContainSubstring("connection reset"))
		})

		It("returns 503 without a spatial database", func() {
			router = httpadapter.New(failingAssessor{err: assessment.ErrNoSpatialSource}, catalogue).Routes()
			w := do(router, http.MethodPost, "/assessments/site", `{"site":{"type":"Polygon"}}`)
			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("GET /metrics", func() {
		It("serves prometheus metrics", func() {
			do(router, http.MethodPost, "/assessments", `{"features":[]}`)
			w := do(router, http.MethodGet, "/metrics", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("siterisk_assessment_reports_total"))
		})
	})
})
