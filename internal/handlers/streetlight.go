package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"streetlight-map/internal/mapview"
	"streetlight-map/internal/models"
	"streetlight-map/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StreetlightStore is the backend storage the streetlight API reads from.
type StreetlightStore interface {
	mapview.Source
	GetStreetlightByID(ctx context.Context, id string) (*models.Streetlight, error)
}

type StreetlightHandler struct {
	store           StreetlightStore
	logr            *zap.Logger
	defaultPageSize int
}

func NewStreetlightHandler(store StreetlightStore, logr *zap.Logger, defaultPageSize int) *StreetlightHandler {
	return &StreetlightHandler{store: store, logr: logr, defaultPageSize: defaultPageSize}
}

// GetStreetlights handles GET /streetlights?pageNo=&size=
func (h *StreetlightHandler) GetStreetlights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := models.StreetlightPageParams{
		PageNo:   utils.ParseIntParam(q, "pageNo", 1),
		PageSize: utils.ParseIntParam(q, "size", h.defaultPageSize),
	}

	lights, err := h.store.Streetlights(r.Context(), params)
	if err != nil {
		h.logr.Error("failed to get streetlights", zap.Error(err),
			zap.Int("page_no", params.PageNo), zap.Int("size", params.PageSize))
		writeError(w, http.StatusInternalServerError, "failed to retrieve streetlights")
		return
	}

	writeJSON(w, http.StatusOK, models.StreetlightsResponse{Streetlights: lights})
}

// GetMapStreetlights handles GET /streetlights/map?west=&east=&south=&north=
func (h *StreetlightHandler) GetMapStreetlights(w http.ResponseWriter, r *http.Request) {
	bounds, err := utils.ParseBounds(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lights, err := h.store.StreetlightsInBounds(r.Context(), bounds)
	if err != nil {
		h.logr.Error("failed to get streetlights in bounds", zap.Error(err), zap.Stringer("bounds", bounds))
		writeError(w, http.StatusInternalServerError, "failed to retrieve streetlights")
		return
	}

	writeJSON(w, http.StatusOK, models.StreetlightsResponse{Streetlights: lights})
}

// GetStreetlightByID handles GET /streetlights/{id}
func (h *StreetlightHandler) GetStreetlightByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	light, err := h.store.GetStreetlightByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "streetlight not found")
			return
		}
		h.logr.Error("failed to get streetlight", zap.Error(err), zap.String("id", id))
		writeError(w, http.StatusInternalServerError, "failed to retrieve streetlight")
		return
	}

	writeJSON(w, http.StatusOK, light)
}

// GetWattageOptions handles GET /streetlights/wattage-options
func (h *StreetlightHandler) GetWattageOptions(w http.ResponseWriter, r *http.Request) {
	wattages, err := h.store.WattageOptions(r.Context())
	if err != nil {
		h.logr.Error("failed to get wattage options", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve wattage options")
		return
	}
	writeJSON(w, http.StatusOK, models.WattageOptionsResponse{WattageOptions: wattages})
}

// GetPoleOwnerOptions handles GET /streetlights/pole-owners
func (h *StreetlightHandler) GetPoleOwnerOptions(w http.ResponseWriter, r *http.Request) {
	owners, err := h.store.PoleOwnerOptions(r.Context())
	if err != nil {
		h.logr.Error("failed to get pole owner options", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to retrieve pole owner options")
		return
	}
	writeJSON(w, http.StatusOK, models.PoleOwnerOptionsResponse{PoleOwnerOptions: owners})
}
