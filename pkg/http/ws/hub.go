package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Hub tracks the open catalog feed connections. Every message goes to every
// connection; there are no rooms or per-user routing.
type Hub struct {
	mu     sync.RWMutex
	conns  map[uuid.UUID]*Connection
	logger zerolog.Logger
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		conns:  make(map[uuid.UUID]*Connection),
		logger: logger.With().Str("component", "ws_hub").Logger(),
	}
}

func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	h.conns[c.ID] = c
	n := len(h.conns)
	h.mu.Unlock()

	h.logger.Debug().Str("conn_id", c.ID.String()).Int("connections", n).Msg("connection registered")
}

// Unregister closes c and forgets it.
func (h *Hub) Unregister(c *Connection) {
	h.mu.Lock()
	if h.conns[c.ID] == c {
		delete(h.conns, c.ID)
	}
	h.mu.Unlock()

	c.Close()
	h.logger.Debug().Str("conn_id", c.ID.String()).Msg("connection unregistered")
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// BroadcastAll queues msg on every connection. A full or closed queue does
// not stop delivery to the others; the first such error is returned.
func (h *Hub) BroadcastAll(msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var firstErr error
	for id, c := range h.conns {
		if err := c.Send(msg); err != nil {
			h.logger.Warn().Err(err).Str("conn_id", id.String()).Str("type", msg.Type).Msg("broadcast skipped connection")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Send queues msg on a single connection.
func (h *Hub) Send(id uuid.UUID, msg Message) error {
	h.mu.RLock()
	c, ok := h.conns[id]
	h.mu.RUnlock()

	if !ok {
		return ErrConnectionNotFound
	}
	return c.Send(msg)
}

// CloseAll drops every connection. Hijacked sockets are not closed by
// http.Server.Shutdown, so the app calls this on the way out.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[uuid.UUID]*Connection)
	h.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}
