// Package events carries catalog change notifications from the services
// that make them to the admin WebSocket feed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	ws "github.com/quizforge/packadmin/pkg/http/ws"
)

const DefaultChannel = "packadmin:catalog"

// Event describes one committed catalog change.
type Event struct {
	Type         string    `json:"type"`
	CategoryID   string    `json:"category_id,omitempty"`
	CategoryName string    `json:"category_name,omitempty"`
	PackID       string    `json:"pack_id,omitempty"`
	PackName     string    `json:"pack_name,omitempty"`
	Version      int64     `json:"version,omitempty"`
	At           time.Time `json:"at"`
}

func CategoryCreated(id, name string) Event {
	return Event{Type: ws.TypeCategoryCreated, CategoryID: id, CategoryName: name, At: time.Now().UTC()}
}

func CategoryRenamed(id, name string) Event {
	return Event{Type: ws.TypeCategoryRenamed, CategoryID: id, CategoryName: name, At: time.Now().UTC()}
}

func CategoryDeleted(id string) Event {
	return Event{Type: ws.TypeCategoryDeleted, CategoryID: id, At: time.Now().UTC()}
}

func PackSaved(id, name, categoryID string, version int64) Event {
	return Event{Type: ws.TypePackSaved, PackID: id, PackName: name, CategoryID: categoryID, Version: version, At: time.Now().UTC()}
}

func PackDeleted(id string) Event {
	return Event{Type: ws.TypePackDeleted, PackID: id, At: time.Now().UTC()}
}

// Publisher announces catalog changes.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// RedisPublisher fans events out over Redis Pub/Sub so every API replica's
// Broadcaster sees them.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

var _ Publisher = (*RedisPublisher)(nil)

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}

// HubPublisher delivers events straight to the local hub. Used when Redis
// is not configured and the process is the only replica.
type HubPublisher struct {
	hub *ws.Hub
}

var _ Publisher = (*HubPublisher)(nil)

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, evt Event) error {
	msg, err := toMessage(evt)
	if err != nil {
		return err
	}
	// A slow admin tab must not fail the write that produced the event.
	_ = p.hub.BroadcastAll(msg)
	return nil
}

func toMessage(evt Event) (ws.Message, error) {
	raw, err := json.Marshal(evt)
	if err != nil {
		return ws.Message{}, err
	}
	return ws.Message{Type: evt.Type, Payload: raw}, nil
}
