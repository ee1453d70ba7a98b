package events

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	ws "github.com/quizforge/packadmin/pkg/http/ws"
)

// Handler upgrades authenticated admin requests onto the catalog feed.
// The feed is server-push; the only client message honoured is ping.
type Handler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

func NewHandler(hub *ws.Hub, upgrader websocket.Upgrader, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		logger:   logger.With().Str("component", "catalog_ws").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := ws.NewConnection(raw, h.logger)
	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	conn.Serve(func(msg ws.Message) error {
		switch msg.Type {
		case ws.TypePing:
			return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
		default:
			payload, _ := json.Marshal(ws.ErrorPayload{Code: "unknown_message_type", Message: "unsupported message type " + msg.Type})
			return conn.Send(ws.Message{Type: ws.TypeError, Payload: payload, RequestID: msg.RequestID})
		}
	})
}
