package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/outcome-content/pkg/definitions"
	"github.com/tendant/outcome-content/pkg/itemstore"
)

// DefinitionResponse is the response body for an outcome definition
type DefinitionResponse struct {
	ID                                string            `json:"id"`
	Culture                           string            `json:"culture"`
	GroupID                           string            `json:"group_id,omitempty"`
	Name                              string            `json:"name"`
	Description                       string            `json:"description"`
	IsMonetaryValueApplicable         bool              `json:"is_monetary_value_applicable"`
	AdditionalRegistrationsAreIgnored bool              `json:"additional_registrations_are_ignored"`
	Classifications                   map[string]string `json:"classifications,omitempty"`
	CustomValues                      map[string]string `json:"custom_values,omitempty"`
}

// OutcomeTypeResponse is the response body for a legacy outcome type
type OutcomeTypeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// DefinitionHandler serves outcome definitions over HTTP
type DefinitionHandler struct {
	repo           definitions.Repository
	defaultCulture itemstore.Culture
}

// NewDefinitionHandler creates a handler. defaultCulture is used when a
// request carries no culture parameter.
func NewDefinitionHandler(repo definitions.Repository, defaultCulture itemstore.Culture) *DefinitionHandler {
	return &DefinitionHandler{
		repo:           repo,
		defaultCulture: defaultCulture,
	}
}

// Routes returns the routes for outcome definitions and outcome types
func (h *DefinitionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/definitions", h.ListDefinitions)
	r.Get("/definitions/{id}", h.GetDefinition)

	// Images are read-only; writes answer 501
	r.Get("/definitions/{id}/image", h.GetImage)
	r.Put("/definitions/{id}/image", h.SaveImage)
	r.Delete("/definitions/{id}/image", h.DeleteImage)

	// Deprecated outcome type routes
	r.Get("/outcome-types", h.ListTypes)
	r.Get("/outcome-types/{id}", h.GetType)

	return r
}

// ListDefinitions returns every approved definition in the requested culture
func (h *DefinitionHandler) ListDefinitions(w http.ResponseWriter, r *http.Request) {
	culture, localized, err := h.readOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	records, err := h.repo.GetAll(r.Context(), culture, localized)
	if err != nil {
		slog.Error("Failed to list outcome definitions", "culture", culture.String(), "error", err)
		writeError(w, r, err)
		return
	}

	resp := make([]DefinitionResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, toDefinitionResponse(record))
	}
	render.JSON(w, r, resp)
}

// GetDefinition returns one definition
func (h *DefinitionHandler) GetDefinition(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	culture, localized, err := h.readOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.repo.Get(r.Context(), id, culture, localized)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toDefinitionResponse(record))
}

// GetImage streams the definition's image. A definition without an image
// answers 204.
func (h *DefinitionHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	culture, _, err := h.readOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	img, err := h.repo.GetImage(r.Context(), id, culture)
	if err != nil {
		slog.Error("Failed to get outcome definition image", "definition_id", id, "error", err)
		writeError(w, r, err)
		return
	}
	if img == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img.Data); err != nil {
		slog.Warn("Failed to write image response", "definition_id", id, "error", err)
	}
}

// SaveImage is not supported
func (h *DefinitionHandler) SaveImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	img := &definitions.Image{MimeType: r.Header.Get("Content-Type")}
	writeError(w, r, h.repo.SaveImage(r.Context(), id, img))
}

// DeleteImage is not supported
func (h *DefinitionHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeError(w, r, h.repo.DeleteImage(r.Context(), id))
}

// ListTypes returns outcome groups projected as outcome types
func (h *DefinitionHandler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.repo.GetAllTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]OutcomeTypeResponse, 0, len(types))
	for _, t := range types {
		resp = append(resp, OutcomeTypeResponse{ID: t.ID.String(), Name: t.Name})
	}
	render.JSON(w, r, resp)
}

// GetType returns one outcome group projected as an outcome type
func (h *DefinitionHandler) GetType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	t, err := h.repo.GetType(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if t == nil {
		writeError(w, r, fmt.Errorf("outcome type %s: %w", id, definitions.ErrNotFound))
		return
	}
	render.JSON(w, r, OutcomeTypeResponse{ID: t.ID.String(), Name: t.Name})
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.Join(definitions.ErrInvalidArgument, err)
	}
	return id, nil
}

// readOptions reads the culture and localized query parameters. A missing
// culture means the handler's default culture; localized defaults to true.
func (h *DefinitionHandler) readOptions(r *http.Request) (itemstore.Culture, bool, error) {
	q := r.URL.Query()

	culture := h.defaultCulture
	if q.Has("culture") {
		c, err := itemstore.ParseCulture(q.Get("culture"))
		if err != nil {
			return "", false, err
		}
		culture = c
	}

	localized := true
	if v := q.Get("localized"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return "", false, errors.Join(definitions.ErrInvalidArgument, err)
		}
		localized = b
	}
	return culture, localized, nil
}

func toDefinitionResponse(record *definitions.OutcomeDefinitionRecord) DefinitionResponse {
	resp := DefinitionResponse{
		ID:                                record.ID.String(),
		Culture:                           string(record.Culture),
		Name:                              record.Name,
		Description:                       record.Description,
		IsMonetaryValueApplicable:         record.IsMonetaryValueApplicable,
		AdditionalRegistrationsAreIgnored: record.AdditionalRegistrationsAreIgnored,
		Classifications:                   fieldMap(record.Classifications),
		CustomValues:                      fieldMap(record.CustomValues),
	}
	if record.GroupID != nil {
		resp.GroupID = record.GroupID.String()
	}
	return resp
}

func fieldMap(in map[itemstore.FieldID]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		if v != "" {
			out[k.String()] = v
		}
	}
	return out
}

// writeError maps repository errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"

	switch {
	case errors.Is(err, definitions.ErrInvalidArgument), errors.Is(err, itemstore.ErrInvalidCulture):
		status, code = http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, definitions.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, definitions.ErrNotSupported):
		status, code = http.StatusNotImplemented, "not_supported"
	case errors.Is(err, definitions.ErrTaxonomyUnavailable):
		status, code = http.StatusServiceUnavailable, "taxonomy_unavailable"
	case errors.Is(err, definitions.ErrConsistencyFault):
		code = "consistency_fault"
	}

	message := http.StatusText(status)
	if err != nil && status < http.StatusInternalServerError {
		message = err.Error()
	}

	requestID, _ := r.Context().Value(RequestIDKey).(string)
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{Code: code, Message: message, RequestID: requestID}})
}
