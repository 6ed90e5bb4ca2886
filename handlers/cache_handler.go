package handlers

import (
	"net/http"

	"github.com/deekshith06/lc-rating-system/services"
)

type CacheHandler struct {
	predictionService services.PredictionService
}

func NewCacheHandler(ps services.PredictionService) *CacheHandler {
	return &CacheHandler{predictionService: ps}
}

// ClearHandler обрабатывает POST /cache/clear. Защищён админским JWT.
func (h *CacheHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("cache_type")

	cleared, err := h.predictionService.ClearCache(scope)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "cleared": cleared}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
