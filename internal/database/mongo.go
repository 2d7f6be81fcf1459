// internal/database/mongo.go
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chemnitz-facilities-api/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const defaultOpTimeout = 10 * time.Second

// MongoStore implements Store on top of a single database handle.
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	logger  *zap.Logger
}

// Connect dials MongoDB, verifies the connection with a ping and returns a
// store bound to cfg.DBName. The client reconnects on its own afterwards.
func Connect(ctx context.Context, cfg config.MongoConfig, logger *zap.Logger) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is not set")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB", zap.String("database", cfg.DBName))
	return NewMongoStore(client, cfg.DBName, timeout, logger), nil
}

func NewMongoStore(client *mongo.Client, dbName string, timeout time.Duration, logger *zap.Logger) *MongoStore {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &MongoStore{
		client:  client,
		db:      client.Database(dbName),
		timeout: timeout,
		logger:  logger,
	}
}

// EnsureIndexes creates the unique indexes the users collection relies on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.Collection(UsersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) FindAll(ctx context.Context, collection string) ([]bson.M, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	docs := []bson.M{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	return docs, nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection, id string) (bson.M, error) {
	return s.FindOne(ctx, collection, idFilter(id))
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M) (bson.M, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find one in %s: %w", collection, err)
	}
	return doc, nil
}

func (s *MongoStore) Insert(ctx context.Context, collection string, doc bson.M) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("insert into %s: %w", collection, ErrDuplicate)
		}
		return "", fmt.Errorf("insert into %s: %w", collection, err)
	}
	return IDString(result.InsertedID), nil
}

func (s *MongoStore) UpdateFields(ctx context.Context, collection string, filter, fields bson.M) (UpdateResult, error) {
	return s.update(ctx, collection, filter, bson.M{"$set": fields})
}

func (s *MongoStore) UnsetField(ctx context.Context, collection string, filter bson.M, field string) (UpdateResult, error) {
	return s.update(ctx, collection, filter, bson.M{"$unset": bson.M{field: ""}})
}

func (s *MongoStore) update(ctx context.Context, collection string, filter, update bson.M) (UpdateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.Collection(collection).UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return UpdateResult{}, fmt.Errorf("update %s: %w", collection, ErrDuplicate)
		}
		return UpdateResult{}, fmt.Errorf("update %s: %w", collection, err)
	}
	return UpdateResult{Matched: result.MatchedCount, Modified: result.ModifiedCount}, nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", collection, err)
	}
	return result.DeletedCount, nil
}

func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx, readpref.Primary())
}

// idFilter matches the literal string id, and also the ObjectID when id is
// valid hex. Imported datasets use both kinds of _id.
func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

// IDString renders a stored _id the way the API exposes it.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// Open builds the store selected by cfg.Store.Driver. The returned close
// function releases the connection; it is a no-op for the memory store.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Store, func(context.Context) error, error) {
	if cfg.Store.Driver == "memory" {
		logger.Warn("using in-memory document store; data is lost on exit")
		return NewMemoryStore(), func(context.Context) error { return nil }, nil
	}

	store, err := Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = store.Disconnect(context.Background())
		return nil, nil, err
	}
	return store, store.Disconnect, nil
}
