package buyers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/propleads/intake/internal/auth"
	"github.com/propleads/intake/internal/domain"
	"github.com/propleads/intake/pkg/validator"
)

// Handler exposes buyer CRUD over HTTP.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with REST endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the buyer routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /buyers", h.list)
	mux.HandleFunc("POST /buyers", h.create)
	mux.HandleFunc("GET /buyers/{id}", h.get)
	mux.HandleFunc("PUT /buyers/{id}", h.update)
	mux.HandleFunc("DELETE /buyers/{id}", h.delete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actingUser, err := auth.RequireUserID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var in validator.BuyerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), actingUser, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid buyer id: %v", err), http.StatusBadRequest)
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// updateRequest is the PUT payload: the present fields plus the concurrency
// token the client read the record with.
type updateRequest struct {
	validator.PatchInput
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actingUser, err := auth.RequireUserID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid buyer id: %v", err), http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}
	if req.UpdatedAt.IsZero() {
		http.Error(w, "updatedAt is required", http.StatusBadRequest)
		return
	}

	updated, err := h.service.Update(r.Context(), actingUser, id, req.PatchInput, req.UpdatedAt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actingUser, err := auth.RequireUserID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid buyer id: %v", err), http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), actingUser, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := FilterFromQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// FilterFromQuery parses list/export filter parameters. Unknown enum values
// are rejected rather than silently dropped.
func FilterFromQuery(q map[string][]string) (domain.BuyerFilter, error) {
	get := func(key string) string {
		if vals, ok := q[key]; ok && len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	filter := domain.BuyerFilter{Search: get("search")}

	if raw := get("city"); raw != "" {
		city, err := domain.ParseCity(raw)
		if err != nil {
			return domain.BuyerFilter{}, err
		}
		filter.City = city
	}
	if raw := get("propertyType"); raw != "" {
		pt, err := domain.ParsePropertyType(raw)
		if err != nil {
			return domain.BuyerFilter{}, err
		}
		filter.PropertyType = pt
	}
	if raw := get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return domain.BuyerFilter{}, err
		}
		filter.Status = status
	}
	if raw := get("timeline"); raw != "" {
		timeline, err := domain.ParseTimeline(raw)
		if err != nil {
			return domain.BuyerFilter{}, err
		}
		filter.Timeline = timeline
	}
	if raw := get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return domain.BuyerFilter{}, fmt.Errorf("invalid page: %q", raw)
		}
		filter.Page = page
	}
	if raw := get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return domain.BuyerFilter{}, fmt.Errorf("invalid pageSize: %q", raw)
		}
		filter.PageSize = size
	}

	return filter, nil
}

// writeError maps service errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": vErr.Fields})
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		logrus.WithError(err).Error("buyer request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
