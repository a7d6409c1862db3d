package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SocketHandler streams sheet events over a websocket. Clients only read;
// anything they send is discarded.
type SocketHandler struct {
	broadcaster *events.Broadcaster
	logger      *slog.Logger
}

func NewSocketHandler(broadcaster *events.Broadcaster, logger *slog.Logger) *SocketHandler {
	return &SocketHandler{broadcaster: broadcaster, logger: logger}
}

// ServeHTTP handles GET /v1/ws/sheets/{id}
func (h *SocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sheetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	pubsub := h.broadcaster.Subscribe(ctx, sheetID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		h.logger.Error("Failed to subscribe", "error", err, "sheet_id", sheetID)
		return
	}

	h.logger.Info("Websocket connection established", "sheet_id", sheetID, "remote_addr", r.RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	msgChan := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			h.logger.Info("Websocket client disconnected", "sheet_id", sheetID)
			return
		case msg, ok := <-msgChan:
			if !ok {
				return
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("Failed to unmarshal event", "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Warn("Websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
