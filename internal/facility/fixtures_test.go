package facility

import (
	"context"
	"errors"
	"testing"

	"chemnitz-facilities-api/internal/database"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

const schoolGlobalID = "9b2e61a4-3c57-4d0e-8f19-6a7b5c4d3e21"

var fixtureDocs = map[string][]bson.M{
	"kindergarten": {
		{"_id": "K1", "OBJECTID": 1, "ID": 101, "X": 12.91, "Y": 50.82, "KITA": 1, "HORT": nil,
			"BEZEICHNUNG": "Kita Sonnenschein", "TRAEGER": "Stadt Chemnitz", "PLZ": 9111, "ORT": "Chemnitz"},
		{"_id": "X1", "OBJECTID": 2, "ID": 102, "HORT": 1, "BEZEICHNUNG": "Hort am Park"},
	},
	"school": {
		{"_id": "S1", "OBJECTID": 3, "ID": 201, "X": 12.93, "Y": 50.83, "TYP": 1, "ART": "Grundschule",
			"BEZEICHNUNG": "Grundschule am Wasserturm", "PLZ": 9112, "GlobalID": "{" + schoolGlobalID + "}"},
		{"_id": "X1", "OBJECTID": 4, "ID": 202, "TYP": 2, "ART": "Oberschule"},
	},
	"social_child_project": {
		{"_id": "C1", "OBJECTID": 5, "ID": 301, "LEISTUNGEN": "Hausaufgabenhilfe", "TRAEGER": "Jugendhilfe e.V."},
	},
	"social_teenage_project": {
		{"_id": "T1", "OBJECTID": 6, "ID": 401, "LEISTUNGEN": "Streetwork"},
	},
}

func newFixtureStore(t *testing.T) *database.MemoryStore {
	t.Helper()
	store := database.NewMemoryStore()
	for collection, docs := range fixtureDocs {
		for _, doc := range docs {
			_, err := store.Insert(context.Background(), collection, doc)
			require.NoError(t, err)
		}
	}
	return store
}

// failingStore fails every read of one collection.
type failingStore struct {
	database.Store
	collection string
}

var errStoreDown = errors.New("store unavailable")

func (s failingStore) FindByID(ctx context.Context, collection, id string) (bson.M, error) {
	if collection == s.collection {
		return nil, errStoreDown
	}
	return s.Store.FindByID(ctx, collection, id)
}

func (s failingStore) FindAll(ctx context.Context, collection string) ([]bson.M, error) {
	if collection == s.collection {
		return nil, errStoreDown
	}
	return s.Store.FindAll(ctx, collection)
}
