package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

type mockCategoryStore struct {
	mock.Mock
}

func (m *mockCategoryStore) ListCategories(ctx context.Context) ([]pack.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]pack.Category), args.Error(1)
}

func (m *mockCategoryStore) GetCategory(ctx context.Context, id string) (pack.Category, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(pack.Category), args.Error(1)
}

func (m *mockCategoryStore) InsertCategory(ctx context.Context, c pack.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryStore) RenameCategory(ctx context.Context, id, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *mockCategoryStore) DeleteCategory(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPackStore struct {
	mock.Mock
}

func (m *mockPackStore) ListPacks(ctx context.Context, categoryID string) ([]pack.Record, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]pack.Record), args.Error(1)
}

func (m *mockPackStore) GetPack(ctx context.Context, id string) (pack.Record, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(pack.Record), args.Error(1)
}

func (m *mockPackStore) InsertPack(ctx context.Context, rec pack.Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockPackStore) UpdatePack(ctx context.Context, rec pack.Record, expectedVersion int64) error {
	return m.Called(ctx, rec, expectedVersion).Error(0)
}

func (m *mockPackStore) DeletePack(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func fixedID(id string) func() string { return func() string { return id } }

func oneQuestion() []pack.RecordQuestion {
	return []pack.RecordQuestion{{
		Text:    "Capital of France?",
		Options: []pack.Option{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}},
	}}
}

func TestCategoryRepository_Create(t *testing.T) {
	store := new(mockCategoryStore)
	repo := NewCategoryRepository(store)
	repo.newID = fixedID("cat-1")

	want := pack.Category{ID: "cat-1", Name: "Geography"}
	store.On("InsertCategory", mock.Anything, want).Return(nil)

	got, err := repo.Create(context.Background(), "Geography")

	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestCategoryRepository_CreateError(t *testing.T) {
	store := new(mockCategoryStore)
	repo := NewCategoryRepository(store)
	boom := errors.New("boom")

	store.On("InsertCategory", mock.Anything, mock.AnythingOfType("pack.Category")).Return(boom)

	_, err := repo.Create(context.Background(), "Geography")

	assert.ErrorIs(t, err, boom)
	store.AssertExpectations(t)
}

func TestCategoryRepository_RenamePassesThrough(t *testing.T) {
	store := new(mockCategoryStore)
	repo := NewCategoryRepository(store)

	store.On("RenameCategory", mock.Anything, "missing", "x").Return(db.ErrNotFound)

	assert.ErrorIs(t, repo.Rename(context.Background(), "missing", "x"), db.ErrNotFound)
	store.AssertExpectations(t)
}

func TestPackRepository_SaveInsertsNewRecord(t *testing.T) {
	store := new(mockPackStore)
	repo := NewPackRepository(store)
	repo.newID = fixedID("pack-1")

	rec := pack.Record{Name: "Capitals", CategoryID: "c1", Questions: oneQuestion(), Version: 7}
	want := rec
	want.ID = "pack-1"
	want.Version = 1

	store.On("InsertPack", mock.Anything, want).Return(nil)

	got, err := repo.Save(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, want, got)
	store.AssertExpectations(t)
}

func TestPackRepository_SaveUpdatesWithExpectedVersion(t *testing.T) {
	store := new(mockPackStore)
	repo := NewPackRepository(store)

	rec := pack.Record{ID: "pack-1", Name: "Capitals", CategoryID: "c1", Questions: oneQuestion(), Version: 3}
	want := rec
	want.Version = 4

	store.On("UpdatePack", mock.Anything, want, int64(3)).Return(nil)

	got, err := repo.Save(context.Background(), rec)

	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Version)
	store.AssertExpectations(t)
}

func TestPackRepository_SaveConflict(t *testing.T) {
	store := new(mockPackStore)
	repo := NewPackRepository(store)

	rec := pack.Record{ID: "pack-1", Version: 3}
	store.On("UpdatePack", mock.Anything, mock.AnythingOfType("pack.Record"), int64(3)).Return(db.ErrVersionConflict)

	_, err := repo.Save(context.Background(), rec)

	assert.ErrorIs(t, err, db.ErrVersionConflict)
	store.AssertExpectations(t)
}

func TestPackRepository_List(t *testing.T) {
	store := new(mockPackStore)
	repo := NewPackRepository(store)

	expect := []pack.Record{{ID: "p1", CategoryID: "c1"}}
	store.On("ListPacks", mock.Anything, "c1").Return(expect, nil)

	got, err := repo.List(context.Background(), "c1")

	require.NoError(t, err)
	assert.Equal(t, expect, got)
	store.AssertExpectations(t)
}
