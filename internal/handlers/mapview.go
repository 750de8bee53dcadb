package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"streetlight-map/internal/geo"
	"streetlight-map/internal/mapview"
	"streetlight-map/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MapViewHandler struct {
	views           *mapview.Registry
	logr            *zap.Logger
	defaultPageSize int
}

func NewMapViewHandler(views *mapview.Registry, logr *zap.Logger, defaultPageSize int) *MapViewHandler {
	return &MapViewHandler{views: views, logr: logr, defaultPageSize: defaultPageSize}
}

type filterRequest struct {
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

type poleIDQueryRequest struct {
	Query *string `json:"query"`
}

type infoWindowRequest struct {
	PoleID string `json:"poleID"`
}

type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// CreateView handles POST /views
func (h *MapViewHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	id, ctrl := h.views.Create()
	center, _ := ctrl.Center()

	h.logr.Info("view created", zap.String("view_id", id))
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     id,
		"center": center,
	})
}

// GetView handles GET /views/{viewID}
func (h *MapViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// DeleteView handles DELETE /views/{viewID}
func (h *MapViewHandler) DeleteView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	if !h.views.Delete(id) {
		writeError(w, http.StatusNotFound, "view not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMarkers handles GET /views/{viewID}/markers
func (h *MapViewHandler) GetMarkers(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	markers := ctrl.Visible()
	writeJSON(w, http.StatusOK, map[string]any{
		"markers": markers,
		"count":   len(markers),
	})
}

// LoadPage handles POST /views/{viewID}/load/page?pageNo=&size=
func (h *MapViewHandler) LoadPage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	pageNo := utils.ParseIntParam(q, "pageNo", 1)
	size := utils.ParseIntParam(q, "size", h.defaultPageSize)

	added, err := ctrl.LoadPage(r.Context(), pageNo, size)
	if err != nil {
		h.writeViewError(w, err, "failed to load streetlight page")
		return
	}
	h.writeLoaded(w, ctrl, added)
}

// LoadBounds handles POST /views/{viewID}/load/bounds?west=&east=&south=&north=
func (h *MapViewHandler) LoadBounds(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	bounds, err := utils.ParseBounds(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	added, err := ctrl.LoadByBounds(r.Context(), bounds)
	if err != nil {
		h.writeViewError(w, err, "failed to load streetlights in bounds")
		return
	}
	h.writeLoaded(w, ctrl, added)
}

// LoadOptions handles POST /views/{viewID}/load/options
func (h *MapViewHandler) LoadOptions(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	if err := ctrl.LoadOptions(r.Context()); err != nil {
		h.writeViewError(w, err, "failed to load filter options")
		return
	}
	state := ctrl.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"wattageOptions":   state.WattageOptions,
		"poleOwnerOptions": state.PoleOwnerOptions,
	})
}

// ApplyFilter handles PUT /views/{viewID}/filters
func (h *MapViewHandler) ApplyFilter(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.ApplyFilter(req.Attribute, req.Value); err != nil {
		h.logr.Warn("filter rejected", zap.String("attribute", req.Attribute), zap.Error(err))
		h.writeViewError(w, err, "failed to apply filter")
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// SetPoleIDQuery handles PUT /views/{viewID}/filters/pole-id
func (h *MapViewHandler) SetPoleIDQuery(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	var req poleIDQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl.SetPoleIDQuery(req.Query)
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// SetBoundsFilter handles PUT /views/{viewID}/filters/bounds. A null body
// clears the bounds filter.
func (h *MapViewHandler) SetBoundsFilter(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	var req *geo.Bounds
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := ctrl.SetBounds(req); err != nil {
		h.writeViewError(w, err, "failed to apply bounds filter")
		return
	}
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// ClearFilters handles DELETE /views/{viewID}/filters
func (h *MapViewHandler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	ctrl.ClearFilters()
	writeJSON(w, http.StatusOK, ctrl.Snapshot())
}

// OpenWindow handles PUT /views/{viewID}/info-window
func (h *MapViewHandler) OpenWindow(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	var req infoWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctrl.OpenWindow(req.PoleID)
	writeJSON(w, http.StatusOK, map[string]string{"openWindow": req.PoleID})
}

// IsInfoWindowOpen handles GET /views/{viewID}/info-window/{poleID}
func (h *MapViewHandler) IsInfoWindowOpen(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	poleID := chi.URLParam(r, "poleID")
	writeJSON(w, http.StatusOK, map[string]any{
		"poleID": poleID,
		"open":   ctrl.IsInfoWindowOpen(poleID),
	})
}

// SetLocation handles PUT /views/{viewID}/location
func (h *MapViewHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.view(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Lat == nil || req.Lng == nil {
		writeError(w, http.StatusBadRequest, "lat and lng are required")
		return
	}

	if err := ctrl.SetCurrentLocation(*req.Lat, *req.Lng); err != nil {
		center, _ := ctrl.Center()
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  err.Error(),
			"center": center,
		})
		return
	}
	center, _ := ctrl.Center()
	writeJSON(w, http.StatusOK, map[string]any{"center": center})
}

func (h *MapViewHandler) view(w http.ResponseWriter, r *http.Request) (*mapview.Controller, bool) {
	ctrl, err := h.views.Get(chi.URLParam(r, "viewID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "view not found")
		return nil, false
	}
	return ctrl, true
}

func (h *MapViewHandler) writeLoaded(w http.ResponseWriter, ctrl *mapview.Controller, added int) {
	state := ctrl.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"added":   added,
		"total":   state.Total,
		"visible": state.Visible,
		"markers": state.Markers,
	})
}

func (h *MapViewHandler) writeViewError(w http.ResponseWriter, err error, msg string) {
	var fetchErr *mapview.FetchError
	switch {
	case errors.Is(err, mapview.ErrInvalidFilterValue), errors.Is(err, mapview.ErrInvalidBounds):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, mapview.ErrViewNotFound):
		writeError(w, http.StatusNotFound, "view not found")
	case errors.Is(err, mapview.ErrStaleResponse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &fetchErr):
		h.logr.Error(msg, zap.Error(err), zap.String("op", fetchErr.Op))
		writeError(w, http.StatusBadGateway, msg)
	default:
		h.logr.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}
