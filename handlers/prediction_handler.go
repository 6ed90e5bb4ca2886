package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/deekshith06/lc-rating-system/models"
	"github.com/deekshith06/lc-rating-system/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
	channelService    services.ChannelService
	archiveService    services.ArchiveService
}

func NewPredictionHandler(ps services.PredictionService, cs services.ChannelService, as services.ArchiveService) *PredictionHandler {
	return &PredictionHandler{
		predictionService: ps,
		channelService:    cs,
		archiveService:    as,
	}
}

// parseContestRef собирает ContestRef из contestType и contestNo.
// Тип нормализуется: "Bi-Weekly" и "biweekly" означают одно и то же.
func parseContestRef(r *http.Request) (models.ContestRef, error) {
	rawType := r.URL.Query().Get("contestType")
	rawNo := r.URL.Query().Get("contestNo")
	if rawType == "" || rawNo == "" {
		return models.ContestRef{}, errors.New("contestType and contestNo query parameters are required")
	}

	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(rawType)), "-", "")
	var contestType models.ContestType
	switch normalized {
	case string(models.ContestTypeWeekly):
		contestType = models.ContestTypeWeekly
	case string(models.ContestTypeBiweekly):
		contestType = models.ContestTypeBiweekly
	default:
		return models.ContestRef{}, fmt.Errorf("invalid contestType %q: expected weekly or biweekly", rawType)
	}

	no, err := strconv.Atoi(rawNo)
	if err != nil || no <= 0 {
		return models.ContestRef{}, fmt.Errorf("invalid contestNo %q: expected a positive integer", rawNo)
	}

	return models.ContestRef{Type: contestType, No: no}, nil
}

// resolveUsernames объединяет явно перечисленных пользователей с ростером
// канала. Хотя бы один из параметров username и channelNo обязателен.
func (h *PredictionHandler) resolveUsernames(r *http.Request) ([]string, error) {
	query := r.URL.Query()

	var usernames []string
	for _, raw := range query["username"] {
		for _, username := range strings.Split(raw, ",") {
			if username = strings.TrimSpace(username); username != "" {
				usernames = append(usernames, username)
			}
		}
	}

	channelNo := query.Get("channelNo")
	if channelNo == "" && len(usernames) == 0 {
		return nil, errors.New("at least one of username and channelNo query parameters is required")
	}

	if channelNo != "" {
		roster, err := h.channelService.Resolve(r.Context(), channelNo)
		if err != nil {
			return nil, err
		}
		usernames = append(usernames, roster...)
	}
	return usernames, nil
}

// PredictHandler обрабатывает GET /lc.
func (h *PredictionHandler) PredictHandler(w http.ResponseWriter, r *http.Request) {
	contest, err := parseContestRef(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	usernames, err := h.resolveUsernames(r)
	if err != nil {
		if errors.Is(err, services.ErrRegistryDisabled) {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		badRequestResponse(w, r, err)
		return
	}

	prediction, err := h.predictionService.Predict(r.Context(), contest, usernames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, prediction, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ObtainedHandler обрабатывает GET /obtained: официальные результаты по
// полному имени контеста.
func (h *PredictionHandler) ObtainedHandler(w http.ResponseWriter, r *http.Request) {
	contest, err := models.ParseContestName(r.URL.Query().Get("name"))
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	usernames, err := h.resolveUsernames(r)
	if err != nil {
		if errors.Is(err, services.ErrRegistryDisabled) {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		badRequestResponse(w, r, err)
		return
	}

	obtained, err := h.predictionService.Obtained(r.Context(), contest, usernames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contestName": contest.Name(), "results": obtained}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReconcileHandler обрабатывает GET /reconcile. Опубликованный отчёт
// архивируется в фоне и не задерживает ответ.
func (h *PredictionHandler) ReconcileHandler(w http.ResponseWriter, r *http.Request) {
	contest, err := parseContestRef(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	usernames, err := h.resolveUsernames(r)
	if err != nil {
		if errors.Is(err, services.ErrRegistryDisabled) {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		badRequestResponse(w, r, err)
		return
	}

	reconciled, err := h.predictionService.Reconcile(r.Context(), contest, usernames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if reconciled.ResultsPublished && h.archiveService != nil {
		go func(report *models.ReconciledContest) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_, _ = h.archiveService.ArchiveReconciled(ctx, report)
		}(reconciled)
	}

	if err := writeJSON(w, http.StatusOK, reconciled, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ContestsHandler обрабатывает GET /contests.
func (h *PredictionHandler) ContestsHandler(w http.ResponseWriter, r *http.Request) {
	contests, err := h.predictionService.Contests(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"contests": contests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
