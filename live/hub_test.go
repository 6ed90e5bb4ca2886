package live

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.NewClient(conn, r.URL.Query().Get("room"))
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dialRoom(t *testing.T, srv *httptest.Server, room string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastReachesRoomOnly(t *testing.T) {
	hub, srv := startHubServer(t)

	weekly := dialRoom(t, srv, "weekly-contest-476")
	biweekly := dialRoom(t, srv, "biweekly-contest-102")

	require.Eventually(t, func() bool {
		return hub.RoomSize("weekly-contest-476") == 1 && hub.RoomSize("biweekly-contest-102") == 1
	}, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom("weekly-contest-476", []byte(`{"contestName":"weekly-contest-476"}`))

	require.NoError(t, weekly.SetReadDeadline(time.Now().Add(time.Second)))
	_, message, err := weekly.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(message), "weekly-contest-476")

	// Соседняя комната ничего не получает, чтение истекает по дедлайну.
	require.NoError(t, biweekly.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err = biweekly.ReadMessage()
	assert.Error(t, err)
}

func TestHubRoomEmptiesAfterDisconnect(t *testing.T) {
	hub, srv := startHubServer(t)

	conn := dialRoom(t, srv, "weekly-contest-476")
	require.Eventually(t, func() bool {
		return hub.RoomSize("weekly-contest-476") == 1
	}, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.RoomSize("weekly-contest-476") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestHubBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub, _ := startHubServer(t)
	hub.BroadcastToRoom("weekly-contest-999", []byte("x"))
}
