// internal/database/seeder.go
package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"chemnitz-facilities-api/config"
	"chemnitz-facilities-api/internal/models"
	"chemnitz-facilities-api/internal/s3"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DatasetSource opens dataset files by name. Missing files must yield an
// error matching fs.ErrNotExist.
type DatasetSource interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DirSource reads dataset files from a local directory.
type DirSource string

func (d DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(string(d), name))
}

// NewDatasetSource reads from the configured S3 bucket when one is set and
// from the local dataset directory otherwise.
func NewDatasetSource(ctx context.Context, cfg config.Config) (DatasetSource, error) {
	if cfg.S3.Bucket != "" {
		src, err := s3.NewSource(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	if cfg.Dataset.Dir == "" {
		return nil, errors.New("neither s3.bucket nor dataset.dir is configured")
	}
	return DirSource(cfg.Dataset.Dir), nil
}

// Seeder loads the city's open-data facility exports into empty collections.
type Seeder struct {
	store  Store
	logger *zap.Logger
}

func NewSeeder(store Store, logger *zap.Logger) *Seeder {
	return &Seeder{store: store, logger: logger}
}

// SeedAll seeds every facility collection from src and returns how many
// documents were inserted per collection. Collections that already hold
// documents, and collections without a dataset file, are skipped.
func (s *Seeder) SeedAll(ctx context.Context, src DatasetSource) (map[models.Category]int, error) {
	inserted := make(map[models.Category]int, len(models.Categories))
	for _, category := range models.Categories {
		n, err := s.SeedCategory(ctx, src, category)
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", category, err)
		}
		inserted[category] = n
	}
	return inserted, nil
}

func (s *Seeder) SeedCategory(ctx context.Context, src DatasetSource, category models.Category) (int, error) {
	count, err := s.store.Count(ctx, category.Collection())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("collection already populated, seeding skipped",
			zap.String("collection", category.Collection()), zap.Int64("documents", count))
		return 0, nil
	}

	for _, name := range []string{category.Collection() + ".json", category.Collection() + ".geojson"} {
		r, err := src.Open(ctx, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
		docs, err := ParseDataset(r)
		r.Close()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		if err := s.insertAll(ctx, category.Collection(), docs); err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		s.logger.Info("collection seeded",
			zap.String("collection", category.Collection()),
			zap.String("file", name),
			zap.Int("documents", len(docs)))
		return len(docs), nil
	}

	s.logger.Warn("no dataset file found", zap.String("collection", category.Collection()))
	return 0, nil
}

// insertAll inserts docs in order. When an insert fails, the documents this
// call already inserted are deleted again so the next run sees an empty
// collection and retries the import.
func (s *Seeder) insertAll(ctx context.Context, collection string, docs []bson.M) error {
	inserted := make([]interface{}, 0, len(docs))
	for i, doc := range docs {
		if _, ok := doc["_id"]; !ok {
			doc["_id"] = primitive.NewObjectID()
		}
		if _, err := s.store.Insert(ctx, collection, doc); err != nil {
			s.rollback(ctx, collection, inserted)
			return fmt.Errorf("insert document %d of %d: %w", i+1, len(docs), err)
		}
		inserted = append(inserted, doc["_id"])
	}
	return nil
}

func (s *Seeder) rollback(ctx context.Context, collection string, ids []interface{}) {
	var left int
	for _, id := range ids {
		if _, err := s.store.DeleteOne(ctx, collection, bson.M{"_id": id}); err != nil {
			left++
			s.logger.Error("seed rollback delete failed",
				zap.String("collection", collection), zap.String("id", IDString(id)), zap.Error(err))
		}
	}
	if left > 0 {
		s.logger.Error("collection left partially seeded, clear it before seeding again",
			zap.String("collection", collection), zap.Int("documents", left))
		return
	}
	s.logger.Warn("seed rolled back", zap.String("collection", collection), zap.Int("documents", len(ids)))
}

type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Properties map[string]interface{} `json:"properties"`
		Geometry   *struct {
			Type        string        `json:"type"`
			Coordinates []json.Number `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// ParseDataset accepts either a JSON array of documents or a GeoJSON
// FeatureCollection. For features, X and Y are taken from a point geometry
// when the properties do not carry them.
func ParseDataset(r io.Reader) ([]bson.M, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty dataset")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rows []map[string]interface{}
	switch data[0] {
	case '[':
		if err := dec.Decode(&rows); err != nil {
			return nil, fmt.Errorf("decode document array: %w", err)
		}
	case '{':
		var fc featureCollection
		if err := dec.Decode(&fc); err != nil {
			return nil, fmt.Errorf("decode feature collection: %w", err)
		}
		if fc.Type != "FeatureCollection" {
			return nil, fmt.Errorf("unsupported GeoJSON type %q", fc.Type)
		}
		for _, feature := range fc.Features {
			props := feature.Properties
			if props == nil {
				props = map[string]interface{}{}
			}
			if g := feature.Geometry; g != nil && g.Type == "Point" && len(g.Coordinates) >= 2 {
				if _, ok := props["X"]; !ok {
					props["X"] = g.Coordinates[0]
				}
				if _, ok := props["Y"]; !ok {
					props["Y"] = g.Coordinates[1]
				}
			}
			rows = append(rows, props)
		}
	default:
		return nil, errors.New("dataset must be a JSON array or a GeoJSON object")
	}

	docs := make([]bson.M, 0, len(rows))
	for _, row := range rows {
		doc := make(bson.M, len(row))
		for k, v := range row {
			doc[k] = normalizeNumber(v)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// normalizeNumber stores integral JSON numbers as int64 and the rest as float64.
func normalizeNumber(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
