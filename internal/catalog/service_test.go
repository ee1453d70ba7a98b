package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/db/memory"
	"github.com/quizforge/packadmin/internal/db/repository"
	"github.com/quizforge/packadmin/internal/events"
	"github.com/quizforge/packadmin/internal/pack"
	ws "github.com/quizforge/packadmin/pkg/http/ws"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc   *Service
	cache *Cache
	pub   *recordingPublisher
	mr    *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := memory.New()
	cache := NewCache(client, time.Minute)
	pub := &recordingPublisher{}
	svc := NewService(repository.NewCategoryRepository(store), repository.NewPackRepository(store), cache, pub, zerolog.Nop())
	return fixture{svc: svc, cache: cache, pub: pub, mr: mr}
}

func capitalsRecord(categoryID string) pack.Record {
	return pack.Record{
		Name:       "Capitals",
		Time:       5,
		Difficulty: pack.DifficultyEasy,
		CategoryID: categoryID,
		Questions: []pack.RecordQuestion{
			{Text: "Capital of France?", Options: []pack.Option{{Text: "Paris", IsCorrect: true}, {Text: "Lyon"}}},
		},
	}
}

func TestCreateCategoryValidatesName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCategory(ctx, "   ")
	assert.ErrorIs(t, err, pack.ErrMissingName)

	c, err := f.svc.CreateCategory(ctx, "  Geography ")
	require.NoError(t, err)
	assert.Equal(t, "Geography", c.Name)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, []string{ws.TypeCategoryCreated}, f.pub.types())
}

func TestSavePackCreateThenUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, "Geography")
	require.NoError(t, err)

	created, err := f.svc.SavePack(ctx, capitalsRecord(c.ID))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(1), created.Version)
	assert.Equal(t, "Geography", created.CategoryName)

	edit := created
	edit.Name = "World capitals"
	updated, err := f.svc.SavePack(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, int64(2), updated.Version)

	// A second writer still holding version 1 loses.
	_, err = f.svc.SavePack(ctx, created)
	assert.ErrorIs(t, err, db.ErrVersionConflict)

	got, err := f.svc.GetPack(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "World capitals", got.Name)
}

// racingStore runs afterGet once, between reading a pack and returning it.
type racingStore struct {
	*memory.Store
	afterGet func()
}

func (s *racingStore) GetPack(ctx context.Context, id string) (pack.Record, error) {
	rec, err := s.Store.GetPack(ctx, id)
	if hook := s.afterGet; hook != nil {
		s.afterGet = nil
		hook()
	}
	return rec, err
}

func TestConflictEvictsStaleCacheEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := &racingStore{Store: memory.New()}
	svc := NewService(repository.NewCategoryRepository(store), repository.NewPackRepository(store),
		NewCache(client, time.Minute), nil, zerolog.Nop())
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, "Geography")
	require.NoError(t, err)
	created, err := svc.SavePack(ctx, capitalsRecord(c.ID))
	require.NoError(t, err)

	store.afterGet = func() {
		next := created
		next.Name = "World capitals"
		_, err := svc.SavePack(ctx, next)
		require.NoError(t, err)
	}

	// The read lands before the concurrent save and caches version 1.
	stale, err := svc.GetPack(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale.Version)

	stale.Description = "edited from the stale copy"
	_, err = svc.SavePack(ctx, stale)
	require.ErrorIs(t, err, db.ErrVersionConflict)

	fresh, err := svc.GetPack(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Version)
	assert.Equal(t, "World capitals", fresh.Name)

	fresh.Description = "retried"
	retried, err := svc.SavePack(ctx, fresh)
	require.NoError(t, err)
	assert.Equal(t, int64(3), retried.Version)
}

func TestSavePackUnknownCategory(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SavePack(context.Background(), capitalsRecord("nope"))
	assert.ErrorIs(t, err, pack.ErrMissingCategory)
	assert.True(t, pack.IsValidation(err))
}

func TestGetPackReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, "Geography")
	require.NoError(t, err)
	saved, err := f.svc.SavePack(ctx, capitalsRecord(c.ID))
	require.NoError(t, err)

	cached, err := f.cache.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, cached, "save must not leave a cache entry behind")

	first, err := f.svc.GetPack(ctx, saved.ID)
	require.NoError(t, err)

	cached, err = f.cache.Get(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, first, *cached)

	_, err = f.svc.RenameCategory(ctx, c.ID, "World")
	require.NoError(t, err)
	cached, err = f.cache.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Nil(t, cached)

	second, err := f.svc.GetPack(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "World", second.CategoryName)
}

func TestGetPackSurvivesCacheOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, "Geography")
	require.NoError(t, err)
	saved, err := f.svc.SavePack(ctx, capitalsRecord(c.ID))
	require.NoError(t, err)

	f.mr.Close()

	got, err := f.svc.GetPack(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestDeleteCategoryCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	geo, err := f.svc.CreateCategory(ctx, "Geography")
	require.NoError(t, err)
	hist, err := f.svc.CreateCategory(ctx, "History")
	require.NoError(t, err)

	p1, err := f.svc.SavePack(ctx, capitalsRecord(geo.ID))
	require.NoError(t, err)
	_, err = f.svc.SavePack(ctx, capitalsRecord(hist.ID))
	require.NoError(t, err)
	_, err = f.svc.GetPack(ctx, p1.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCategory(ctx, geo.ID))

	_, err = f.svc.GetPack(ctx, p1.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	all, err := f.svc.ListPacks(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, hist.ID, all[0].CategoryID)

	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, geo.ID), db.ErrNotFound)
}

func TestDeletePack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, "Geography")
	require.NoError(t, err)
	saved, err := f.svc.SavePack(ctx, capitalsRecord(c.ID))
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePack(ctx, saved.ID))
	assert.ErrorIs(t, f.svc.DeletePack(ctx, saved.ID), db.ErrNotFound)
	assert.Equal(t, []string{ws.TypeCategoryCreated, ws.TypePackSaved, ws.TypePackDeleted}, f.pub.types())
}
