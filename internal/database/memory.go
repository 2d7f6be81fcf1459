package database

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-process Store with the same observable behaviour as
// MongoStore for the operations this service issues: top-level equality
// filters, unique fields and copy-in/copy-out documents.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]bson.M
	unique      map[string][]string
}

// NewMemoryStore returns an empty store enforcing the same unique user
// fields as MongoStore.EnsureIndexes.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string][]bson.M),
		unique: map[string][]string{
			UsersCollection: {"username", "email"},
		},
	}
}

func (s *MemoryStore) FindAll(_ context.Context, collection string) ([]bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]bson.M, 0, len(s.collections[collection]))
	for _, doc := range s.collections[collection] {
		c, err := clone(doc)
		if err != nil {
			return nil, err
		}
		docs = append(docs, c)
	}
	return docs, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, collection, id string) (bson.M, error) {
	return s.FindOne(ctx, collection, bson.M{"_id": id})
}

func (s *MemoryStore) FindOne(_ context.Context, collection string, filter bson.M) (bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(collection, filter)
	if i < 0 {
		return nil, ErrNotFound
	}
	return clone(s.collections[collection][i])
}

func (s *MemoryStore) Insert(_ context.Context, collection string, doc bson.M) (string, error) {
	c, err := clone(doc)
	if err != nil {
		return "", err
	}
	if _, ok := c["_id"]; !ok {
		c["_id"] = primitive.NewObjectID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(collection, bson.M{"_id": c["_id"]}) >= 0 {
		return "", fmt.Errorf("insert into %s: %w", collection, ErrDuplicate)
	}
	if err := s.checkUnique(collection, c, -1); err != nil {
		return "", err
	}
	s.collections[collection] = append(s.collections[collection], c)
	return IDString(c["_id"]), nil
}

func (s *MemoryStore) UpdateFields(_ context.Context, collection string, filter, fields bson.M) (UpdateResult, error) {
	set, err := clone(fields)
	if err != nil {
		return UpdateResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, filter)
	if i < 0 {
		return UpdateResult{}, nil
	}
	current := s.collections[collection][i]

	updated := make(bson.M, len(current)+len(set))
	for k, v := range current {
		updated[k] = v
	}
	modified := false
	for k, v := range set {
		if old, ok := current[k]; !ok || !reflect.DeepEqual(old, v) {
			modified = true
		}
		updated[k] = v
	}
	if err := s.checkUnique(collection, updated, i); err != nil {
		return UpdateResult{}, err
	}

	s.collections[collection][i] = updated
	if !modified {
		return UpdateResult{Matched: 1}, nil
	}
	return UpdateResult{Matched: 1, Modified: 1}, nil
}

func (s *MemoryStore) UnsetField(_ context.Context, collection string, filter bson.M, field string) (UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, filter)
	if i < 0 {
		return UpdateResult{}, nil
	}
	doc := s.collections[collection][i]
	if _, ok := doc[field]; !ok {
		return UpdateResult{Matched: 1}, nil
	}
	delete(doc, field)
	return UpdateResult{Matched: 1, Modified: 1}, nil
}

func (s *MemoryStore) DeleteOne(_ context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(collection, filter)
	if i < 0 {
		return 0, nil
	}
	docs := s.collections[collection]
	s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
	return 1, nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.collections[collection])), nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// indexOf returns the position of the first document matching filter, or -1.
// Callers hold the lock.
func (s *MemoryStore) indexOf(collection string, filter bson.M) int {
	for i, doc := range s.collections[collection] {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) checkUnique(collection string, doc bson.M, skip int) error {
	for _, field := range s.unique[collection] {
		v, ok := doc[field]
		if !ok {
			continue
		}
		for i, other := range s.collections[collection] {
			if i == skip {
				continue
			}
			if ov, ok := other[field]; ok && valuesEqual(ov, v) {
				return fmt.Errorf("%s.%s: %w", collection, field, ErrDuplicate)
			}
		}
	}
	return nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if k == "_id" {
			if IDString(got) != IDString(want) {
				return false
			}
			continue
		}
		if !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// clone deep-copies doc through a BSON round trip, which also normalises
// structs and Go scalar types to what the driver would hand back.
func clone(doc bson.M) (bson.M, error) {
	data, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out bson.M
	if err := bson.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
