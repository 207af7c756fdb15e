package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/alexivanou/powderscout/internal/model"
	"github.com/alexivanou/powderscout/internal/ranking"
	"github.com/alexivanou/powderscout/internal/service"
	"go.uber.org/zap"
)

const (
	msgLocationRequired = "location required; search for a place manually"
	msgNoResorts        = "No ski resorts found"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetResorts handles GET /api/v1/resorts
func (h *Handler) GetResorts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	latStr := q.Get("lat")
	lonStr := q.Get("lon")

	if latStr == "" || lonStr == "" {
		http.Error(w, msgLocationRequired, http.StatusBadRequest)
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		http.Error(w, "invalid lat parameter", http.StatusBadRequest)
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		http.Error(w, "invalid lon parameter", http.StatusBadRequest)
		return
	}

	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		http.Error(w, "invalid coordinates range", http.StatusBadRequest)
		return
	}

	var radius float64
	if radiusStr := q.Get("radius"); radiusStr != "" {
		radius, err = strconv.ParseFloat(radiusStr, 64)
		if err != nil || math.IsNaN(radius) || radius <= 0 || radius > service.MaxRadiusKm {
			http.Error(w, "invalid radius parameter", http.StatusBadRequest)
			return
		}
	}

	day := 0
	if dayStr := q.Get("day"); dayStr != "" {
		day, err = strconv.Atoi(dayStr)
		if err != nil || day < 0 || day >= model.ForecastDays {
			http.Error(w, "invalid day parameter", http.StatusBadRequest)
			return
		}
	}

	mode, err := ranking.ParseSortMode(q.Get("sort"))
	if err != nil {
		http.Error(w, "invalid sort parameter", http.StatusBadRequest)
		return
	}

	req := model.DiscoverRequest{
		Lat:      lat,
		Lon:      lon,
		Name:     q.Get("name"),
		RadiusKm: radius,
	}

	response, err := h.service.DiscoverRanked(r.Context(), req, day, mode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDay) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error discovering resorts", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if response == nil {
		http.Error(w, msgNoResorts, http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// SearchPlaces handles GET /api/v1/places
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "query parameter 'q' is required", http.StatusBadRequest)
		return
	}

	response, err := h.service.SearchPlaces(r.Context(), query)
	if err != nil {
		if errors.Is(err, service.ErrQueryTooShort) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error searching places", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response)
}

// GetRadius handles GET /api/v1/settings/radius
func (h *Handler) GetRadius(w http.ResponseWriter, r *http.Request) {
	km, err := h.service.GetRadius(r.Context())
	if err != nil {
		h.logger.Error("Error reading radius", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, model.RadiusSetting{RadiusKm: km})
}

// SetRadius handles PUT /api/v1/settings/radius
func (h *Handler) SetRadius(w http.ResponseWriter, r *http.Request) {
	var setting model.RadiusSetting
	if err := json.NewDecoder(r.Body).Decode(&setting); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetRadius(r.Context(), setting.RadiusKm); err != nil {
		if errors.Is(err, service.ErrInvalidRadius) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Error saving radius", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, setting)
}

// GetCatalog handles GET /api/v1/catalog
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.service.CatalogStatus())
}

// RefreshCatalog handles POST /api/v1/catalog/refresh
func (h *Handler) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.RefreshCatalog(r.Context()); err != nil {
		h.logger.Error("Error refreshing catalog", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, h.service.CatalogStatus())
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
