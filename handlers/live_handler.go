package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/deekshith06/lc-rating-system/leetcode"
	"github.com/deekshith06/lc-rating-system/live"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin проверяется CORS-слоем, сюда доходят только разрешённые.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

func NewLiveHandler(hub *live.Hub, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{hub: hub, logger: logger}
}

// ServeWs обрабатывает GET /ws/contests/{contestName}: подключает клиента
// к комнате контеста, в которую рассылаются свежие предсказания.
func (h *LiveHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	contestName := chi.URLParam(r, "contestName")
	if !leetcode.ValidateContestName(contestName) {
		badRequestResponse(w, r, leetcode.ErrInvalidContestName)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту ошибкой.
		h.logger.Warn("websocket upgrade failed",
			slog.String("contest", contestName),
			slog.String("error", err.Error()))
		return
	}

	h.hub.NewClient(conn, contestName)
}
