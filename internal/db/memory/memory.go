// Package memory is an in-process db.Store. Each Store is owned by whoever
// constructs it; nothing is shared between instances.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

// Store keeps categories and packs in insertion order.
type Store struct {
	mu         sync.RWMutex
	categories []pack.Category
	packs      []pack.Record
}

var _ db.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

func (s *Store) ListCategories(_ context.Context) ([]pack.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pack.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (pack.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.categoryIndex(id); i >= 0 {
		return s.categories[i], nil
	}
	return pack.Category{}, db.ErrNotFound
}

func (s *Store) InsertCategory(_ context.Context, c pack.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = append(s.categories, c)
	return nil
}

func (s *Store) RenameCategory(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return db.ErrNotFound
	}
	s.categories[i].Name = name
	for j := range s.packs {
		if s.packs[j].CategoryID == id {
			s.packs[j].CategoryName = name
		}
	}
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return db.ErrNotFound
	}
	s.categories = append(s.categories[:i:i], s.categories[i+1:]...)

	kept := s.packs[:0:0]
	for _, p := range s.packs {
		if p.CategoryID != id {
			kept = append(kept, p)
		}
	}
	s.packs = kept
	return nil
}

func (s *Store) ListPacks(_ context.Context, categoryID string) ([]pack.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]pack.Record, 0, len(s.packs))
	for _, p := range s.packs {
		if categoryID == "" || p.CategoryID == categoryID {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (s *Store) GetPack(_ context.Context, id string) (pack.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.packIndex(id); i >= 0 {
		return s.packs[i].Clone(), nil
	}
	return pack.Record{}, db.ErrNotFound
}

func (s *Store) InsertPack(_ context.Context, rec pack.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.categoryIndex(rec.CategoryID) < 0 {
		return fmt.Errorf("category: %w", db.ErrNotFound)
	}
	s.packs = append(s.packs, rec.Clone())
	return nil
}

func (s *Store) UpdatePack(_ context.Context, rec pack.Record, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.packIndex(rec.ID)
	if i < 0 {
		return db.ErrNotFound
	}
	if s.packs[i].Version != expectedVersion {
		return db.ErrVersionConflict
	}
	if s.categoryIndex(rec.CategoryID) < 0 {
		return fmt.Errorf("category: %w", db.ErrNotFound)
	}
	s.packs[i] = rec.Clone()
	return nil
}

func (s *Store) DeletePack(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.packIndex(id)
	if i < 0 {
		return db.ErrNotFound
	}
	s.packs = append(s.packs[:i:i], s.packs[i+1:]...)
	return nil
}

func (s *Store) categoryIndex(id string) int {
	for i, c := range s.categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) packIndex(id string) int {
	for i, p := range s.packs {
		if p.ID == id {
			return i
		}
	}
	return -1
}
