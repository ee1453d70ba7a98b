package ws

import "encoding/json"

// Message types on the admin catalog feed.
const (
	// Client -> Server
	TypePing = "ping"

	// Server -> Client
	TypeCategoryCreated = "category_created"
	TypeCategoryRenamed = "category_renamed"
	TypeCategoryDeleted = "category_deleted"
	TypePackSaved       = "pack_saved"
	TypePackDeleted     = "pack_deleted"
	TypePong            = "pong"
	TypeError           = "error"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
