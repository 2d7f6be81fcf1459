// internal/database/store.go
package database

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

const UsersCollection = "users"

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UpdateResult reports how many documents an update matched and changed.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// Store is the document persistence boundary. Documents cross it as bson.M
// copies; callers never share memory with the backing store.
type Store interface {
	FindAll(ctx context.Context, collection string) ([]bson.M, error)
	// FindByID returns ErrNotFound for absent and for malformed ids alike.
	FindByID(ctx context.Context, collection, id string) (bson.M, error)
	FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error)
	Insert(ctx context.Context, collection string, doc bson.M) (string, error)
	UpdateFields(ctx context.Context, collection string, filter, fields bson.M) (UpdateResult, error)
	UnsetField(ctx context.Context, collection string, filter bson.M, field string) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error)
	Count(ctx context.Context, collection string) (int64, error)
	Ping(ctx context.Context) error
}
