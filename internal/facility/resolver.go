package facility

import (
	"context"
	"errors"
	"fmt"

	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/metrics"
	"chemnitz-facilities-api/internal/models"

	"go.uber.org/zap"
)

var (
	ErrFacilityNotFound       = errors.New("facility not found")
	ErrAggregateListingFailed = errors.New("aggregate listing failed")
	ErrUnknownCategory        = errors.New("unknown facility category")
)

// Resolver reads facilities from the four facility collections.
type Resolver struct {
	store   database.Store
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewResolver(store database.Store, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	return &Resolver{store: store, metrics: m, logger: logger}
}

// ResolveByID searches the collections in models.Categories order and
// returns the first hit. Ids are only unique per collection, so there is no
// way to go straight to the right one.
func (r *Resolver) ResolveByID(ctx context.Context, id string) (models.Facility, error) {
	for _, category := range models.Categories {
		f, err := r.FindInCategory(ctx, category, id)
		if err == nil {
			r.metrics.ObserveLookup("hit")
			return f, nil
		}
		if !errors.Is(err, ErrFacilityNotFound) {
			r.metrics.ObserveLookup("error")
			return nil, err
		}
	}
	r.metrics.ObserveLookup("miss")
	return nil, fmt.Errorf("%w: %s", ErrFacilityNotFound, id)
}

// FindInCategory looks id up in a single collection.
func (r *Resolver) FindInCategory(ctx context.Context, category models.Category, id string) (models.Facility, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	doc, err := r.store.FindByID(ctx, category.Collection(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s in %s", ErrFacilityNotFound, id, category)
		}
		return nil, fmt.Errorf("find %s %s: %w", category, id, err)
	}

	f, err := Project(doc)
	if err != nil {
		r.logger.Warn("stored facility could not be projected",
			zap.String("category", string(category)),
			zap.String("id", id),
			zap.Error(err))
		return nil, err
	}
	f.Base().Category = category
	return f, nil
}

// ListByCategory projects every document of one collection, in store order.
func (r *Resolver) ListByCategory(ctx context.Context, category models.Category) ([]models.Facility, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	docs, err := r.store.FindAll(ctx, category.Collection())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", category, err)
	}

	facilities := make([]models.Facility, 0, len(docs))
	for _, doc := range docs {
		f, err := Project(doc)
		if err != nil {
			return nil, fmt.Errorf("list %s: document %s: %w", category, database.IDString(doc["_id"]), err)
		}
		f.Base().Category = category
		facilities = append(facilities, f)
	}
	return facilities, nil
}

// ListAll lists the four categories one after another. It is all or
// nothing: if any scan fails no partial mapping is returned.
func (r *Resolver) ListAll(ctx context.Context) (map[models.Category][]models.Facility, error) {
	all := make(map[models.Category][]models.Facility, len(models.Categories))
	for _, category := range models.Categories {
		facilities, err := r.ListByCategory(ctx, category)
		if err != nil {
			r.logger.Error("aggregate listing failed", zap.String("category", string(category)), zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrAggregateListingFailed, err)
		}
		all[category] = facilities
	}
	return all, nil
}
