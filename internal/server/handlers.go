package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gophermaps/navigator/internal/domain"
	"github.com/gophermaps/navigator/internal/graph"
	"github.com/gophermaps/navigator/internal/service"
)

// APIHandlers exposes the navigation operations over HTTP.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.NavigationService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.NavigationService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

type areaResponse struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
}

func (h *APIHandlers) handleAreas(w http.ResponseWriter, r *http.Request) {
	areas, err := h.service.ListAreas(r.Context())
	if err != nil {
		h.fail(w, r, err, "failed to list areas")
		return
	}

	resp := make([]areaResponse, 0, len(areas))
	for _, a := range areas {
		resp = append(resp, areaResponse{Name: string(a.Name), Thumbnail: a.Thumbnail})
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleBuildings(w http.ResponseWriter, r *http.Request) {
	area := chi.URLParam(r, "area")
	buildings, err := h.service.ListBuildings(r.Context(), area)
	if err != nil {
		h.fail(w, r, err, "failed to list buildings", "area", area)
		return
	}
	respondJSON(w, http.StatusOK, buildings)
}

func (h *APIHandlers) handleDestinations(w http.ResponseWriter, r *http.Request) {
	building := chi.URLParam(r, "building")
	dests, err := h.service.ListDestinations(r.Context(), building)
	if err != nil {
		h.fail(w, r, err, "failed to list destinations", "building", building)
		return
	}
	respondJSON(w, http.StatusOK, dests)
}

func (h *APIHandlers) handleRoute(w http.ResponseWriter, r *http.Request) {
	start := strings.TrimSpace(chi.URLParam(r, "start"))
	end := strings.TrimSpace(chi.URLParam(r, "end"))
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end navIDs are required")
		return
	}

	route, err := h.service.PlanRoute(r.Context(), start, end)
	if err != nil {
		h.fail(w, r, err, "failed to plan route", "start", start, "end", end)
		return
	}
	respondJSON(w, http.StatusOK, route)
}

func (h *APIHandlers) handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, h.service.Version())
}

func (h *APIHandlers) handleInvalidateAreas(w http.ResponseWriter, r *http.Request) {
	h.service.InvalidateAreaCache()
	h.logger.Info("area label cache invalidated", "request_id", RequestIDFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// fail translates an error kind into a status code. Expected client-facing
// outcomes are logged at info; everything else at error.
func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error, msg string, attrs ...any) {
	status, public := statusFor(err)
	attrs = append(attrs, "error", err, "status", status, "request_id", RequestIDFromContext(r.Context()))
	if status < http.StatusInternalServerError {
		h.logger.Info(msg, attrs...)
	} else {
		h.logger.Error(msg, attrs...)
	}
	writeError(w, status, public)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArea):
		return http.StatusBadRequest, "Invalid area"
	case errors.Is(err, domain.ErrRouteNotFound):
		return http.StatusNotFound, "Invalid Route"
	case errors.Is(err, domain.ErrSchemaValidation):
		return http.StatusBadGateway, "graph returned a malformed record"
	case errors.Is(err, graph.ErrUpstreamTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "graph query timed out"
	case errors.Is(err, graph.ErrConnection), errors.Is(err, graph.ErrAuthentication):
		return http.StatusServiceUnavailable, "graph unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
