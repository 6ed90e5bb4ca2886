package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deekshith06/lc-rating-system/services"
)

type ChannelHandler struct {
	channelService services.ChannelService
}

func NewChannelHandler(cs services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: cs}
}

type createChannelInput struct {
	ID        string   `json:"id"`
	Usernames []string `json:"usernames"`
}

type addUsersInput struct {
	Usernames []string `json:"usernames"`
}

// CreateHandler обрабатывает POST /channels.
func (h *ChannelHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input createChannelInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ID == "" {
		badRequestResponse(w, r, errors.New("channel id is required"))
		return
	}

	channel, err := h.channelService.Create(r.Context(), input.ID, input.Usernames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"channel": channel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddUsersHandler обрабатывает POST /channels/{channelID}/users.
func (h *ChannelHandler) AddUsersHandler(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	var input addUsersInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	channel, err := h.channelService.AddUsers(r.Context(), channelID, input.Usernames)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"channel": channel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /channels/{channelID}.
func (h *ChannelHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	if err := h.channelService.Delete(r.Context(), channelID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListHandler обрабатывает GET /channels.
func (h *ChannelHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channelService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"channels": channels}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler обрабатывает GET /channels/{channelID}.
func (h *ChannelHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")

	channel, err := h.channelService.Get(r.Context(), channelID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"channel": channel}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
