package favorite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/metrics"
	"chemnitz-facilities-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const field = "favorite_facility"

var ErrNothingToClear = errors.New("no favorite facility to clear")

// Resolver is the part of facility.Resolver the workflow needs.
type Resolver interface {
	ResolveByID(ctx context.Context, id string) (models.Facility, error)
}

// Notifier receives favorite change events for a user, e.g. the websocket hub.
type Notifier interface {
	Notify(username string, event Event)
}

type Event struct {
	Type     string          `json:"type"`
	Facility models.Facility `json:"facility,omitempty"`
	At       time.Time       `json:"at"`
}

const (
	EventSet     = "favorite.set"
	EventCleared = "favorite.cleared"
)

// Service stores a copy of a facility on the user document. The copy is not
// refreshed when the source facility changes or disappears.
type Service struct {
	store    database.Store
	resolver Resolver
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewService(store database.Store, resolver Resolver, notifier Notifier, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{store: store, resolver: resolver, notifier: notifier, metrics: m, logger: logger}
}

// SetFavorite resolves facilityID across all categories and snapshots the
// result into the user's favorite, replacing any previous one.
func (s *Service) SetFavorite(ctx context.Context, username, facilityID string) (*models.User, error) {
	f, err := s.resolver.ResolveByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	result, err := s.store.UpdateFields(ctx, database.UsersCollection,
		bson.M{"username": username},
		bson.M{field: f})
	if err != nil {
		return nil, fmt.Errorf("store favorite: %w", err)
	}
	if result.Matched == 0 {
		return nil, account.ErrUserNotFound
	}

	s.metrics.ObserveFavoriteChange("set")
	s.logger.Info("favorite facility set",
		zap.String("username", username),
		zap.String("facility_id", f.Base().ID),
		zap.String("category", string(f.Base().Category)))
	s.notify(username, Event{Type: EventSet, Facility: f})

	return s.user(ctx, username)
}

// GetFavorite returns the stored snapshot as is, or nil when none is set.
func (s *Service) GetFavorite(ctx context.Context, username string) (models.Facility, error) {
	user, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}
	return user.Favorite, nil
}

// ClearFavorite removes the snapshot. A stored null counts as no favorite.
func (s *Service) ClearFavorite(ctx context.Context, username string) (*models.User, error) {
	user, err := s.user(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.FavoriteSnapshot == nil {
		return nil, ErrNothingToClear
	}

	result, err := s.store.UnsetField(ctx, database.UsersCollection, bson.M{"username": username}, field)
	if err != nil {
		return nil, fmt.Errorf("clear favorite: %w", err)
	}
	if result.Matched == 0 {
		return nil, account.ErrUserNotFound
	}
	if result.Modified == 0 {
		return nil, ErrNothingToClear
	}

	s.metrics.ObserveFavoriteChange("cleared")
	s.logger.Info("favorite facility cleared", zap.String("username", username))
	s.notify(username, Event{Type: EventCleared})

	return s.user(ctx, username)
}

func (s *Service) user(ctx context.Context, username string) (*models.User, error) {
	doc, err := s.store.FindOne(ctx, database.UsersCollection, bson.M{"username": username})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, account.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return account.DecodeUser(doc, s.logger)
}

func (s *Service) notify(username string, event Event) {
	if s.notifier == nil {
		return
	}
	event.At = time.Now().UTC()
	s.notifier.Notify(username, event)
}
