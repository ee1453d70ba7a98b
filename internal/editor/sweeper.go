package editor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically closes idle editing sessions.
type Sweeper struct {
	registry *Registry
	ttl      time.Duration
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(registry *Registry, ttl, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		registry: registry,
		ttl:      ttl,
		interval: interval,
		logger:   logger.With().Str("component", "editor_sweeper").Logger(),
	}
}

// Run blocks until context cancellation.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.registry.Sweep(s.ttl); n > 0 {
				s.logger.Info().Int("closed", n).Dur("ttl", s.ttl).Msg("idle editing sessions closed")
			}
		}
	}
}
