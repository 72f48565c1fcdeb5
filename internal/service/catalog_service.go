package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"sweetshop/internal/event"
	"sweetshop/internal/metrics"
	"sweetshop/internal/model"
)

type itemStore interface {
	Create(ctx context.Context, in model.ItemInput) (model.Item, error)
	Get(ctx context.Context, id int64) (model.Item, error)
	List(ctx context.Context) ([]model.Item, error)
	Search(ctx context.Context, filters model.SearchFilters) ([]model.Item, error)
	Update(ctx context.Context, id int64, in model.ItemInput) (model.Item, error)
	Delete(ctx context.Context, id int64) (model.Item, error)
}

type itemCache interface {
	Load(ctx context.Context) ([]model.Item, bool, error)
	Generation(ctx context.Context) (int64, error)
	Store(ctx context.Context, items []model.Item, gen int64) (bool, error)
	Invalidate(ctx context.Context) error
}

type CatalogService struct {
	items itemStore
	cache itemCache
	audit *AuditService
	bus   event.Bus
}

// NewCatalogService wires the catalog. cache and bus may be nil.
func NewCatalogService(items itemStore, cache itemCache, audit *AuditService, bus event.Bus) *CatalogService {
	return &CatalogService{items: items, cache: cache, audit: audit, bus: bus}
}

func (s *CatalogService) Create(ctx context.Context, actor model.AuditActor, in model.ItemInput) (model.Item, error) {
	in = normalizeItemInput(in)
	if err := validateStruct(in); err != nil {
		return model.Item{}, err
	}

	item, err := s.items.Create(ctx, in)
	if err != nil {
		err = itemError(err, 0)
		s.audit.Outcome(ctx, "item.create", actor, "items", nil, nil, err)
		return model.Item{}, err
	}

	s.audit.Outcome(ctx, "item.create", actor, itemResource(item.ID), nil, item, nil)
	s.afterMutation(ctx, event.TypeItemCreated, item, actor)
	return item, nil
}

func (s *CatalogService) Get(ctx context.Context, id int64) (model.Item, error) {
	item, err := s.items.Get(ctx, id)
	if err != nil {
		return model.Item{}, itemError(err, id)
	}
	return item, nil
}

// List returns every item, served from the cache when one is configured.
// The cache generation is read before the database so a listing that raced
// with a mutation is never cached.
func (s *CatalogService) List(ctx context.Context) ([]model.Item, error) {
	cacheable := false
	var gen int64
	if s.cache != nil {
		items, ok, err := s.cache.Load(ctx)
		switch {
		case err != nil:
			metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
			slog.Warn("catalog cache read failed", "error", err)
		case ok:
			metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
			return items, nil
		default:
			metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
		}

		if gen, err = s.cache.Generation(ctx); err != nil {
			slog.Warn("catalog cache generation read failed", "error", err)
		} else {
			cacheable = true
		}
	}

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		stored, err := s.cache.Store(ctx, items, gen)
		switch {
		case err != nil:
			slog.Warn("catalog cache write failed", "error", err)
		case !stored:
			slog.Debug("catalog changed during listing, cache not filled", "generation", gen)
		}
	}

	return items, nil
}

// Search applies every populated filter. An empty filter set is a List.
func (s *CatalogService) Search(ctx context.Context, filters model.SearchFilters) ([]model.Item, error) {
	filters.Name = strings.TrimSpace(filters.Name)
	filters.Category = strings.TrimSpace(filters.Category)

	if filters.MinPrice != nil && *filters.MinPrice < 0 {
		return nil, validationError("min_price must be at least 0", "min_price")
	}
	if filters.MaxPrice != nil && *filters.MaxPrice < 0 {
		return nil, validationError("max_price must be at least 0", "max_price")
	}

	if filters.IsEmpty() {
		return s.List(ctx)
	}

	return s.items.Search(ctx, filters)
}

func (s *CatalogService) Update(ctx context.Context, actor model.AuditActor, id int64, in model.ItemInput) (model.Item, error) {
	in = normalizeItemInput(in)
	if err := validateStruct(in); err != nil {
		return model.Item{}, err
	}

	before, err := s.items.Get(ctx, id)
	if err != nil {
		err = itemError(err, id)
		s.audit.Outcome(ctx, "item.update", actor, itemResource(id), nil, nil, err)
		return model.Item{}, err
	}

	item, err := s.items.Update(ctx, id, in)
	if err != nil {
		err = itemError(err, id)
		s.audit.Outcome(ctx, "item.update", actor, itemResource(id), before, nil, err)
		return model.Item{}, err
	}

	s.audit.Outcome(ctx, "item.update", actor, itemResource(id), before, item, nil)
	s.afterMutation(ctx, event.TypeItemUpdated, item, actor)
	return item, nil
}

func (s *CatalogService) Delete(ctx context.Context, actor model.AuditActor, id int64) (model.DeleteResult, error) {
	item, err := s.items.Delete(ctx, id)
	if err != nil {
		err = itemError(err, id)
		s.audit.Outcome(ctx, "item.delete", actor, itemResource(id), nil, nil, err)
		return model.DeleteResult{}, err
	}

	s.audit.Outcome(ctx, "item.delete", actor, itemResource(id), item, nil, nil)
	s.afterMutation(ctx, event.TypeItemDeleted, item, actor)
	return model.DeleteResult{Deleted: true, ID: id}, nil
}

func (s *CatalogService) afterMutation(ctx context.Context, t event.Type, item model.Item, actor model.AuditActor) {
	invalidateCache(ctx, s.cache)
	publish(s.bus, t, item, actor)
}

func invalidateCache(ctx context.Context, cache itemCache) {
	if cache == nil {
		return
	}
	if err := cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("catalog cache invalidation failed", "error", err)
	}
}

func publish(bus event.Bus, t event.Type, payload any, actor model.AuditActor) {
	if bus == nil {
		return
	}
	bus.Publish(event.New(t, payload, actor.UserID))
}

func normalizeItemInput(in model.ItemInput) model.ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

func itemResource(id int64) string {
	return "items/" + strconv.FormatInt(id, 10)
}
