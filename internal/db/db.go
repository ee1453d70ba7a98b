// Package db holds the storage contract shared by the postgres, sqlite and
// in-memory backends.
package db

import (
	"context"
	"errors"

	"github.com/quizforge/packadmin/internal/pack"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("pack was modified by another session")
)

// CategoryStore persists categories. DeleteCategory also removes the
// category's packs; RenameCategory also rewrites the denormalized name on
// them.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]pack.Category, error)
	GetCategory(ctx context.Context, id string) (pack.Category, error)
	InsertCategory(ctx context.Context, c pack.Category) error
	RenameCategory(ctx context.Context, id, name string) error
	DeleteCategory(ctx context.Context, id string) error
}

// PackStore persists finalized packs. UpdatePack only succeeds when the
// stored version equals expectedVersion.
type PackStore interface {
	ListPacks(ctx context.Context, categoryID string) ([]pack.Record, error)
	GetPack(ctx context.Context, id string) (pack.Record, error)
	InsertPack(ctx context.Context, rec pack.Record) error
	UpdatePack(ctx context.Context, rec pack.Record, expectedVersion int64) error
	DeletePack(ctx context.Context, id string) error
}

// Store is implemented by every backend.
type Store interface {
	CategoryStore
	PackStore
	Ping(ctx context.Context) error
	Close() error
}
