// Package storetest holds the behaviour every db.Store implementation must
// share. Driver packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/pack"
)

// Factory returns an empty store. It is called once per subtest.
type Factory func(t *testing.T) db.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("CategoryLifecycle", func(t *testing.T) { testCategoryLifecycle(t, newStore(t)) })
	t.Run("RenameCascadesToPacks", func(t *testing.T) { testRenameCascades(t, newStore(t)) })
	t.Run("DeleteCascadesToPacks", func(t *testing.T) { testDeleteCascades(t, newStore(t)) })
	t.Run("PackRoundTrip", func(t *testing.T) { testPackRoundTrip(t, newStore(t)) })
	t.Run("PackRequiresCategory", func(t *testing.T) { testPackRequiresCategory(t, newStore(t)) })
	t.Run("UpdateChecksVersion", func(t *testing.T) { testUpdateChecksVersion(t, newStore(t)) })
	t.Run("UpdateRequiresCategory", func(t *testing.T) { testUpdateRequiresCategory(t, newStore(t)) })
	t.Run("ListPacksFilters", func(t *testing.T) { testListPacksFilters(t, newStore(t)) })
	t.Run("DeletePack", func(t *testing.T) { testDeletePack(t, newStore(t)) })
}

func sampleRecord(id, categoryID, categoryName string) pack.Record {
	return pack.Record{
		ID:           id,
		Name:         "Capitals " + id,
		Description:  "European capitals",
		Time:         10,
		Difficulty:   pack.DifficultyMedium,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Version:      1,
		Questions: []pack.RecordQuestion{
			{Text: "Capital of France?", Options: []pack.Option{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}}},
			{Text: "Capital of Spain?", Options: []pack.Option{{Text: "Seville"}, {Text: "Madrid", IsCorrect: true}, {Text: "Bilbao"}}},
		},
	}
}

func testCategoryLifecycle(t *testing.T, s db.Store) {
	ctx := context.Background()

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geography"}))
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c2", Name: "History"}))

	list, err = s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []pack.Category{{ID: "c1", Name: "Geography"}, {ID: "c2", Name: "History"}}, list)

	c, err := s.GetCategory(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, "History", c.Name)

	_, err = s.GetCategory(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
	assert.ErrorIs(t, s.RenameCategory(ctx, "missing", "x"), db.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCategory(ctx, "missing"), db.ErrNotFound)
}

func testRenameCascades(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p1", "c1", "Geo")))

	require.NoError(t, s.RenameCategory(ctx, "c1", "Geography"))

	rec, err := s.GetPack(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Geography", rec.CategoryName)
	assert.Equal(t, int64(1), rec.Version)
}

func testDeleteCascades(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c2", Name: "History"}))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p1", "c1", "Geo")))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p2", "c2", "History")))

	require.NoError(t, s.DeleteCategory(ctx, "c1"))

	_, err := s.GetPack(ctx, "p1")
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = s.GetPack(ctx, "p2")
	assert.NoError(t, err)
}

func testPackRoundTrip(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))

	want := sampleRecord("p1", "c1", "Geo")
	require.NoError(t, s.InsertPack(ctx, want))

	got, err := s.GetPack(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.GetPack(ctx, "missing")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testPackRequiresCategory(t *testing.T, s db.Store) {
	ctx := context.Background()
	err := s.InsertPack(ctx, sampleRecord("p1", "nope", "Nope"))
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func testUpdateChecksVersion(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))
	rec := sampleRecord("p1", "c1", "Geo")
	require.NoError(t, s.InsertPack(ctx, rec))

	rec.Name = "Renamed"
	rec.Questions = rec.Questions[:1]
	rec.Version = 2
	require.NoError(t, s.UpdatePack(ctx, rec, 1))

	got, err := s.GetPack(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	stale := rec
	stale.Name = "Stale"
	stale.Version = 2
	assert.ErrorIs(t, s.UpdatePack(ctx, stale, 1), db.ErrVersionConflict)

	got, err = s.GetPack(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	missing := sampleRecord("ghost", "c1", "Geo")
	assert.ErrorIs(t, s.UpdatePack(ctx, missing, 1), db.ErrNotFound)
}

func testUpdateRequiresCategory(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c2", Name: "History"}))
	rec := sampleRecord("p1", "c1", "Geo")
	require.NoError(t, s.InsertPack(ctx, rec))

	moved := rec
	moved.CategoryID, moved.CategoryName = "nope", "Nope"
	moved.Version = 2
	assert.ErrorIs(t, s.UpdatePack(ctx, moved, 1), db.ErrNotFound)

	got, err := s.GetPack(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	moved.CategoryID, moved.CategoryName = "c2", "History"
	require.NoError(t, s.UpdatePack(ctx, moved, 1))
	got, err = s.GetPack(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "c2", got.CategoryID)
}

func testListPacksFilters(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c2", Name: "History"}))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p1", "c1", "Geo")))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p2", "c2", "History")))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p3", "c1", "Geo")))

	all, err := s.ListPacks(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	geo, err := s.ListPacks(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, geo, 2)
	assert.ElementsMatch(t, []string{"p1", "p3"}, []string{geo[0].ID, geo[1].ID})

	none, err := s.ListPacks(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDeletePack(t *testing.T, s db.Store) {
	ctx := context.Background()
	require.NoError(t, s.InsertCategory(ctx, pack.Category{ID: "c1", Name: "Geo"}))
	require.NoError(t, s.InsertPack(ctx, sampleRecord("p1", "c1", "Geo")))

	require.NoError(t, s.DeletePack(ctx, "p1"))
	assert.ErrorIs(t, s.DeletePack(ctx, "p1"), db.ErrNotFound)

	list, err := s.ListPacks(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}
