package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

// CategoryRepository exposes category storage with id assignment.
type CategoryRepository struct {
	store db.CategoryStore
	newID func() string
}

func NewCategoryRepository(store db.CategoryStore) *CategoryRepository {
	return &CategoryRepository{store: store, newID: uuid.NewString}
}

func (r *CategoryRepository) List(ctx context.Context) ([]pack.Category, error) {
	return r.store.ListCategories(ctx)
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (pack.Category, error) {
	return r.store.GetCategory(ctx, id)
}

// Create stores a category under a freshly generated id.
func (r *CategoryRepository) Create(ctx context.Context, name string) (pack.Category, error) {
	c := pack.Category{ID: r.newID(), Name: name}
	if err := r.store.InsertCategory(ctx, c); err != nil {
		return pack.Category{}, err
	}
	return c, nil
}

// Rename also rewrites the denormalized name on the category's packs.
func (r *CategoryRepository) Rename(ctx context.Context, id, name string) error {
	return r.store.RenameCategory(ctx, id, name)
}

// Delete removes the category together with its packs.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	return r.store.DeleteCategory(ctx, id)
}
