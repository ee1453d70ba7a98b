package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

// PackRepository persists finalized pack records.
type PackRepository struct {
	store db.PackStore
	newID func() string
}

func NewPackRepository(store db.PackStore) *PackRepository {
	return &PackRepository{store: store, newID: uuid.NewString}
}

func (r *PackRepository) List(ctx context.Context, categoryID string) ([]pack.Record, error) {
	return r.store.ListPacks(ctx, categoryID)
}

func (r *PackRepository) Get(ctx context.Context, id string) (pack.Record, error) {
	return r.store.GetPack(ctx, id)
}

// Save inserts a record without an id at version 1. A record with an id
// replaces the stored one only if the stored version still equals
// rec.Version; the saved copy carries the bumped version.
func (r *PackRepository) Save(ctx context.Context, rec pack.Record) (pack.Record, error) {
	rec = rec.Clone()
	if rec.ID == "" {
		rec.ID = r.newID()
		rec.Version = 1
		if err := r.store.InsertPack(ctx, rec); err != nil {
			return pack.Record{}, err
		}
		return rec, nil
	}

	expected := rec.Version
	rec.Version = expected + 1
	if err := r.store.UpdatePack(ctx, rec, expected); err != nil {
		return pack.Record{}, err
	}
	return rec, nil
}

func (r *PackRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeletePack(ctx, id)
}
