package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"chemnitz-facilities-api/config"
	"chemnitz-facilities-api/internal/account"
	"chemnitz-facilities-api/internal/auth"
	"chemnitz-facilities-api/internal/database"
	"chemnitz-facilities-api/internal/export"
	"chemnitz-facilities-api/internal/facility"
	"chemnitz-facilities-api/internal/favorite"
	"chemnitz-facilities-api/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := database.NewMemoryStore()
	for collection, docs := range map[string][]bson.M{
		"kindergarten": {
			{"_id": "K1", "KITA": 1, "HORT": 0, "BEZEICHNUNG": "Kita Sonnenschein", "PLZ": 9111},
		},
		"school": {
			{"_id": "S1", "TYP": 10, "ART": "Grundschule", "BEZEICHNUNG": "Grundschule am Wasserturm", "PLZ": 9112},
			{"_id": "S2", "TYP": 3, "ART": "Gymnasium"},
		},
		"social_child_project":   {{"_id": "C1", "LEISTUNGEN": "Hausaufgabenhilfe"}},
		"social_teenage_project": {{"_id": "T1", "LEISTUNGEN": "Streetwork"}},
	} {
		for _, doc := range docs {
			_, err := store.Insert(ctx, collection, doc)
			require.NoError(t, err)
		}
	}

	logger := zap.NewNop()
	resolver := facility.NewResolver(store, nil, logger)
	accounts := account.NewService(store, auth.NewTokenManager("test-secret", 30*time.Minute), nil, logger)
	hub := socket.NewHub(logger)

	return SetupRouter(Deps{
		Cfg:       config.Config{CORS: config.CORSConfig{AllowOrigins: []string{"*"}}},
		Store:     store,
		Resolver:  resolver,
		Accounts:  accounts,
		Favorites: favorite.NewService(store, resolver, hub, nil, logger),
		Hub:       hub,
		Logger:    logger,
	})
}

func do(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func signupAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()
	w := do(router, http.MethodPost, "/api/v1/signup", "", gin.H{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "s3cret",
		"address":  "Straße der Nationen",
		"plz":      "09111",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodPost, "/api/v1/login", "", gin.H{"username": "alice", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)
	assert.Equal(t, "bearer", token["token_type"])
	return token["access_token"].(string)
}

func TestFacilityByID(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/facilities/S1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "S1", body["id"])
	assert.Equal(t, "Grundschule", body["ART"])
	assert.Equal(t, "school", body["category"])
	assert.Equal(t, "school", body["facility_type"])

	w = do(router, http.MethodGet, "/api/v1/facilities/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Facility not found"}`, w.Body.String())
}

func TestCategoryRoutes(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/schools", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var schools []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &schools))
	require.Len(t, schools, 2)
	assert.Equal(t, "S1", schools[0]["id"])

	w = do(router, http.MethodGet, "/api/v1/kindergartens/K1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kita Sonnenschein", decode(t, w)["BEZEICHNUNG"])

	// Category routes do not fall through to other collections.
	w = do(router, http.MethodGet, "/api/v1/schools/K1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/v1/social-teenage-projects/T1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Streetwork", decode(t, w)["LEISTUNGEN"])
}

func TestAllFacilities(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/facilities", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all["kindergarten"], 1)
	assert.Len(t, all["school"], 2)
	assert.Len(t, all["social_child_project"], 1)
	assert.Len(t, all["social_teenage_project"], 1)
}

func TestExport(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/facilities/export", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "facilities.xlsx")
	assert.NotZero(t, w.Body.Len())
}

func TestHealthz(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSignupAndLogin(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router)

	w := do(router, http.MethodPost, "/api/v1/signup", "", gin.H{
		"username": "alice",
		"email":    "other@example.com",
		"password": "x",
		"address":  "Somewhere",
		"plz":      "09111",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Username or email already exists."}`, w.Body.String())

	w = do(router, http.MethodPost, "/api/v1/signup", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
}

func TestLogin_FormEncoded(t *testing.T) {
	router := newTestRouter(t)
	signupAndLogin(t, router)

	form := url.Values{"username": {"alice"}, "password": {"s3cret"}, "grant_type": {"password"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["access_token"])
}

func TestMe(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/api/v1/users/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := signupAndLogin(t, router)
	w = do(router, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "hashed_password")
	assert.Nil(t, me["favorite_facility"])

	w = do(router, http.MethodPut, "/api/v1/users/me", token, gin.H{"full_name": "Alice Example"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Alice Example", decode(t, w)["full_name"])

	w = do(router, http.MethodDelete, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFavoriteFlow(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router)

	w := do(router, http.MethodGet, "/api/v1/users/me/favorite", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/api/v1/users/me/favorite", token, gin.H{"facility_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPost, "/api/v1/users/me/favorite", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/api/v1/users/me/favorite", token, gin.H{"facility_id": "S1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Grundschule", decode(t, w)["ART"])

	w = do(router, http.MethodGet, "/api/v1/users/me/favorite", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	fav := decode(t, w)
	assert.Equal(t, "S1", fav["id"])
	assert.Equal(t, "school", fav["category"])

	w = do(router, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["favorite_facility"])

	w = do(router, http.MethodDelete, "/api/v1/users/me/favorite", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["favorite_facility"])

	w = do(router, http.MethodDelete, "/api/v1/users/me/favorite", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No favorite facility to remove"}`, w.Body.String())
}

func TestWebSocket_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(router, http.MethodGet, "/api/v1/ws?token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
