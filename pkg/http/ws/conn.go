package ws

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	sendQueueSize = 64
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
	writeWait     = 10 * time.Second
	maxReadBytes  = 4096
)

// Connection is one upgraded socket with a buffered outbound queue.
type Connection struct {
	ID uuid.UUID

	ws     *websocket.Conn
	out    chan Message
	mu     sync.Mutex
	closed bool
	logger zerolog.Logger
}

func NewConnection(raw *websocket.Conn, logger zerolog.Logger) *Connection {
	id := uuid.New()
	return &Connection{
		ID:     id,
		ws:     raw,
		out:    make(chan Message, sendQueueSize),
		logger: logger.With().Str("conn_id", id.String()).Logger(),
	}
}

// Send queues msg without blocking.
func (c *Connection) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.out <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Close is idempotent.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
	c.ws.Close()
}

// Serve runs the write loop in the background and the read loop on the
// calling goroutine, returning when the peer disconnects.
func (c *Connection) Serve(handle func(Message) error) {
	go c.writeLoop()
	c.readLoop(handle)
}

func (c *Connection) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				c.logger.Warn().Err(err).Str("type", msg.Type).Msg("websocket write failed")
				return
			}
		case <-ping.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) readLoop(handle func(Message) error) {
	c.ws.SetReadLimit(maxReadBytes)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("websocket read ended")
			}
			return
		}
		if err := handle(msg); err != nil {
			c.logger.Warn().Err(err).Str("type", msg.Type).Msg("websocket message not handled")
		}
	}
}

var (
	ErrConnectionNotFound = &Error{Code: "connection_not_found", Message: "connection not found"}
	ErrConnectionClosed   = &Error{Code: "connection_closed", Message: "connection is closed"}
	ErrSendQueueFull      = &Error{Code: "send_queue_full", Message: "send queue is full"}
)

// Error is a feed-level failure with a stable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }
