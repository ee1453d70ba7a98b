// Package editor keeps the open pack editing sessions of the admin API.
// Each session is a pack.Session guarded by its own lock; the registry
// itself only maps ids to sessions.
package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/metrics"
	"github.com/quizforge/packadmin/internal/pack"
)

var ErrSessionNotFound = errors.New("editing session not found")

// Catalog is the persistence gateway a session loads from and saves to.
type Catalog interface {
	GetPack(ctx context.Context, id string) (pack.Record, error)
	SavePack(ctx context.Context, rec pack.Record) (pack.Record, error)
}

// View is a session snapshot tagged with its registry id.
type View struct {
	SessionID string `json:"session_id"`
	pack.Snapshot
}

type entry struct {
	mu          sync.Mutex
	session     *pack.Session
	lastTouched time.Time
	closed      bool
}

// Registry maps session ids to open editing sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	catalog  Catalog
	logger   zerolog.Logger
	newID    func() string
	now      func() time.Time
}

func NewRegistry(catalog Catalog, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		catalog:  catalog,
		logger:   logger.With().Str("component", "editor_registry").Logger(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Open starts a session. An empty packID starts the create flow; otherwise
// the persisted pack seeds the edit flow.
func (r *Registry) Open(ctx context.Context, packID string) (View, error) {
	var s *pack.Session
	if packID == "" {
		s = pack.NewSession()
	} else {
		rec, err := r.catalog.GetPack(ctx, packID)
		if err != nil {
			return View{}, err
		}
		s = pack.SeedSession(rec)
	}

	id := r.newID()
	r.mu.Lock()
	r.sessions[id] = &entry{session: s, lastTouched: r.now()}
	r.mu.Unlock()
	metrics.OpenSessions.Inc()

	r.logger.Info().Str("session_id", id).Str("pack_id", packID).Msg("editing session opened")
	return View{SessionID: id, Snapshot: s.Snapshot()}, nil
}

// Get returns the current snapshot of a session.
func (r *Registry) Get(id string) (View, error) {
	var view View
	err := r.with(id, func(s *pack.Session) error {
		view = View{SessionID: id, Snapshot: s.Snapshot()}
		return nil
	})
	return view, err
}

// Apply runs one editing command against a session.
func (r *Registry) Apply(id string, cmd pack.Command) (View, error) {
	var view View
	err := r.with(id, func(s *pack.Session) error {
		snap, err := s.Apply(cmd)
		metrics.EditorOperations.WithLabelValues(string(cmd.Op), metrics.Result(err)).Inc()
		if err != nil {
			return err
		}
		view = View{SessionID: id, Snapshot: snap}
		return nil
	})
	return view, err
}

// Save finalizes the session's pack and persists it. On success the
// session is closed; on any failure it stays open unchanged.
func (r *Registry) Save(ctx context.Context, id string) (pack.Record, error) {
	var saved pack.Record
	err := r.withEntry(id, func(e *entry) error {
		rec, err := e.session.Finalize()
		if err != nil {
			return err
		}
		saved, err = r.catalog.SavePack(ctx, rec)
		if err != nil {
			return err
		}
		// Requests already waiting on this entry must not save it twice.
		e.closed = true
		r.remove(id)
		return nil
	})
	if err != nil {
		return pack.Record{}, err
	}

	r.logger.Info().Str("session_id", id).Str("pack_id", saved.ID).Msg("editing session saved")
	return saved, nil
}

// Discard closes a session without saving.
func (r *Registry) Discard(id string) error {
	err := r.withEntry(id, func(e *entry) error {
		e.closed = true
		r.remove(id)
		return nil
	})
	if err != nil {
		return err
	}
	r.logger.Info().Str("session_id", id).Msg("editing session discarded")
	return nil
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions untouched for longer than ttl and returns how
// many were closed.
func (r *Registry) Sweep(ttl time.Duration) int {
	cutoff := r.now().Add(-ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	swept := 0
	for id, e := range r.sessions {
		// Skip sessions busy in another request.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.lastTouched.Before(cutoff)
		if idle {
			e.closed = true
		}
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			swept++
		}
	}
	metrics.OpenSessions.Sub(float64(swept))
	return swept
}

func (r *Registry) with(id string, fn func(s *pack.Session) error) error {
	return r.withEntry(id, func(e *entry) error { return fn(e.session) })
}

func (r *Registry) withEntry(id string, fn func(e *entry) error) error {
	r.mu.Lock()
	e, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrSessionNotFound
	}
	e.lastTouched = r.now()
	return fn(e)
}

func (r *Registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	metrics.OpenSessions.Dec()
	return true
}
