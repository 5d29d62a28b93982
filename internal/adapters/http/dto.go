package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"siterisk/internal/content"
	"siterisk/internal/domain"
)

var validate = validator.New()

type assessRequest struct {
	Features []domain.Feature `json:"features" validate:"required,dive"`
}

type siteRequest struct {
	// Site is the GeoJSON boundary, passed through untouched to the spatial layer.
	Site json.RawMessage `json:"site" validate:"required"`
}

// requestError marks client mistakes in the request body itself.
type requestError struct {
	err error
}

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }

func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &requestError{fmt.Errorf("decoding body: %w", err)}
	}
	if err := validate.Struct(dst); err != nil {
		return &requestError{err}
	}
	return nil
}

type tierResponse struct {
	Tier        domain.Tier `json:"tier"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
}

type designationResponse struct {
	Key        string                 `json:"key"`
	Title      string                 `json:"title"`
	Classifier content.ClassifierKind `json:"classifier"`
}

type disciplineResponse struct {
	Name         string                `json:"name"`
	Optional     bool                  `json:"optional,omitempty"`
	Designations []designationResponse `json:"designations"`
}

type catalogueResponse struct {
	Version     string               `json:"version"`
	Tiers       []tierResponse       `json:"tiers"`
	Disciplines []disciplineResponse `json:"disciplines"`
}

func newCatalogueResponse(c *content.Catalogue) catalogueResponse {
	resp := catalogueResponse{
		Version:     c.Version,
		Tiers:       make([]tierResponse, 0, len(domain.Tiers)),
		Disciplines: make([]disciplineResponse, 0, len(c.Disciplines)),
	}
	for _, t := range domain.Tiers {
		sum := t.Summary()
		resp.Tiers = append(resp.Tiers, tierResponse{Tier: t, Label: sum.Label, Description: sum.Description})
	}
	for _, d := range c.Disciplines {
		dr := disciplineResponse{Name: d.Name, Optional: d.Optional, Designations: []designationResponse{}}
		for _, des := range c.DesignationsFor(d.Name) {
			dr.Designations = append(dr.Designations, designationResponse{
				Key:        des.Key,
				Title:      des.Title,
				Classifier: des.Classifier,
			})
		}
		resp.Disciplines = append(resp.Disciplines, dr)
	}
	return resp
}
