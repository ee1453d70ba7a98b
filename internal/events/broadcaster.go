package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/quizforge/packadmin/pkg/http/ws"
)

// Broadcaster listens for catalog events on Redis Pub/Sub and forwards them
// to every connected admin.
type Broadcaster struct {
	redis   *redis.Client
	hub     *ws.Hub
	channel string
	logger  zerolog.Logger
}

func NewBroadcaster(client *redis.Client, hub *ws.Hub, channel string, logger zerolog.Logger) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		redis:   client,
		hub:     hub,
		channel: channel,
		logger:  logger.With().Str("component", "catalog_broadcaster").Logger(),
	}
}

// Run subscribes to the channel and blocks until the context is cancelled.
// ready, if non-nil, is closed once the subscription is confirmed.
func (b *Broadcaster) Run(ctx context.Context, ready chan<- struct{}) error {
	if b.redis == nil || b.hub == nil {
		return nil
	}

	sub := b.redis.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.forward(msg.Payload)
		}
	}
}

func (b *Broadcaster) forward(payload string) {
	var evt Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		b.logger.Warn().Err(err).Msg("failed to decode catalog event")
		return
	}

	msg, err := toMessage(evt)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to marshal catalog WS payload")
		return
	}
	if err := b.hub.BroadcastAll(msg); err != nil {
		b.logger.Warn().Err(err).Str("type", evt.Type).Msg("failed to broadcast catalog event")
	}
}
