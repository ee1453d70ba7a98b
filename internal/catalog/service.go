// Package catalog owns categories and persisted packs: the category
// directory, the persistence gateway behind editing sessions, and the pack
// read cache.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quizforge/packadmin/internal/db"
	"github.com/quizforge/packadmin/internal/db/repository"
	"github.com/quizforge/packadmin/internal/events"
	"github.com/quizforge/packadmin/internal/metrics"
	"github.com/quizforge/packadmin/internal/pack"
)

// ErrUnknownCategory is returned when a pack references a category that
// does not exist.
var ErrUnknownCategory = &pack.Error{
	Kind:    pack.KindMissingCategory,
	Field:   "category_id",
	Message: "category does not exist",
}

// Service is the catalog's application layer.
type Service struct {
	categories *repository.CategoryRepository
	packs      *repository.PackRepository
	cache      PackCache
	events     events.Publisher
	logger     zerolog.Logger
}

// NewService wires the catalog. cache and publisher may be nil.
func NewService(categories *repository.CategoryRepository, packs *repository.PackRepository, cache PackCache, publisher events.Publisher, logger zerolog.Logger) *Service {
	if cache == nil {
		cache = noopCache{}
	}
	return &Service{
		categories: categories,
		packs:      packs,
		cache:      cache,
		events:     publisher,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

func (s *Service) ListCategories(ctx context.Context) ([]pack.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (pack.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return pack.Category{}, pack.ErrMissingName
	}
	c, err := s.categories.Create(ctx, name)
	if err != nil {
		return pack.Category{}, fmt.Errorf("create category: %w", err)
	}
	s.publish(ctx, events.CategoryCreated(c.ID, c.Name))
	return c, nil
}

// RenameCategory renames a category and every pack's copy of its name.
func (s *Service) RenameCategory(ctx context.Context, id, name string) (pack.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return pack.Category{}, pack.ErrMissingName
	}
	affected, err := s.packIDs(ctx, id)
	if err != nil {
		return pack.Category{}, err
	}
	if err := s.categories.Rename(ctx, id, name); err != nil {
		return pack.Category{}, err
	}
	s.invalidate(ctx, affected...)
	s.publish(ctx, events.CategoryRenamed(id, name))
	return pack.Category{ID: id, Name: name}, nil
}

// DeleteCategory deletes a category together with its packs.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	affected, err := s.packIDs(ctx, id)
	if err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, affected...)
	s.publish(ctx, events.CategoryDeleted(id))
	s.logger.Info().Str("category_id", id).Int("packs", len(affected)).Msg("category deleted")
	return nil
}

// ListPacks returns every pack, or only those of categoryID when set.
func (s *Service) ListPacks(ctx context.Context, categoryID string) ([]pack.Record, error) {
	return s.packs.List(ctx, categoryID)
}

// GetPack loads a persisted pack, reading through the cache.
func (s *Service) GetPack(ctx context.Context, id string) (pack.Record, error) {
	cached, err := s.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.PackCacheRequests.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("pack_id", id).Msg("pack cache read failed")
	case cached != nil:
		metrics.PackCacheRequests.WithLabelValues("hit").Inc()
		return *cached, nil
	default:
		metrics.PackCacheRequests.WithLabelValues("miss").Inc()
	}

	rec, err := s.packs.Get(ctx, id)
	if err != nil {
		return pack.Record{}, err
	}
	if err := s.cache.Set(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("pack_id", id).Msg("pack cache write failed")
	}
	return rec, nil
}

// SavePack persists a finalized record. A record without an id is created;
// otherwise rec.Version must match the stored version. The category's
// current name is stamped onto the saved record.
func (s *Service) SavePack(ctx context.Context, rec pack.Record) (saved pack.Record, err error) {
	mode := "update"
	if rec.ID == "" {
		mode = "create"
	}
	defer func() {
		metrics.PackSaves.WithLabelValues(mode, metrics.Result(err)).Inc()
	}()

	c, err := s.categories.Get(ctx, rec.CategoryID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return pack.Record{}, ErrUnknownCategory
		}
		return pack.Record{}, fmt.Errorf("load category: %w", err)
	}
	rec.CategoryName = c.Name

	saved, err = s.packs.Save(ctx, rec)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) && mode == "create" {
			// Category deleted between lookup and insert.
			return pack.Record{}, ErrUnknownCategory
		}
		if errors.Is(err, db.ErrVersionConflict) {
			// A read racing an earlier save can leave an older version
			// cached; drop it so reopening sees the stored one.
			s.invalidate(ctx, rec.ID)
		}
		return pack.Record{}, err
	}

	s.invalidate(ctx, saved.ID)
	s.publish(ctx, events.PackSaved(saved.ID, saved.Name, saved.CategoryID, saved.Version))
	s.logger.Info().
		Str("pack_id", saved.ID).
		Str("mode", mode).
		Int64("version", saved.Version).
		Int("questions", len(saved.Questions)).
		Msg("pack saved")
	return saved, nil
}

func (s *Service) DeletePack(ctx context.Context, id string) error {
	if err := s.packs.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, events.PackDeleted(id))
	return nil
}

func (s *Service) packIDs(ctx context.Context, categoryID string) ([]string, error) {
	recs, err := s.packs.List(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list packs of category: %w", err)
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *Service) invalidate(ctx context.Context, ids ...string) {
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		s.logger.Warn().Err(err).Strs("pack_ids", ids).Msg("pack cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("type", evt.Type).Msg("catalog event publish failed")
	}
}
