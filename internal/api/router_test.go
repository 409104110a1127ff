package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chuckle-chow/internal/core/chef"
	"chuckle-chow/internal/core/ratings"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) *Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.App.Version = "test"
	cfg.Generator.Provider = "template"
	cfg.DedupWindow = time.Second
	cfg.Server.AllowedOrigins = []string{"*"}
	if mutate != nil {
		mutate(cfg)
	}

	r := SetupRouter(cfg, Dependencies{
		Kitchen: chef.NewKitchen(chef.NewTemplateGenerator(chef.Options{Seed: 11}), 11),
		Ratings: ratings.NewMemoryStore(),
	})
	t.Cleanup(r.Close)
	return r
}

func do(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWelcomeAndHealth(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodGet, "/api", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Welcome to the Chuckle & Chow API"}`, w.Body.String())

	w = do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"generator":"template"`)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ready", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/live", "", nil).Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestIngredientsUsesServerKeys(t *testing.T) {
	r := newTestRouter(t, nil)
	w := do(r, http.MethodGet, "/ingredients", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, key := range []string{"meat", "vegetables", "fruits", "seafood", "dairy", "bread_carbs", "devil_water"} {
		assert.NotEmpty(t, body[key], key)
	}
}

func TestGenerateRecipe(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/generate_recipe?cb=1", `{"ingredients":["chicken","moonshine"],"isRandom":false,"requestId":"a"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", w.Header().Get("Cache-Control"))

	var got recipe.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Moonshine Chicken Skillet", got.Title)
	assert.NotEmpty(t, got.ShareText)
	assert.NotEmpty(t, got.Text)

	w = do(r, http.MethodPost, "/generate_recipe", `{"ingredients":[],"isRandom":true,"requestId":"b"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, recipe.IsSemanticFailure(&got))
}

func TestGenerateRecipeBadInput(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/generate_recipe", `{"ingredients":"pork"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"text":"Server error: Ingredients must be a list of strings"}`, w.Body.String())

	w = do(r, http.MethodPost, "/generate_recipe", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON format")

	w = do(r, http.MethodPost, "/generate_recipe", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"text":"Server error: No JSON data provided in request body"}`, w.Body.String())

	w = do(r, http.MethodPost, "/elucidate_recipe", "   ", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"text":"Server error: No JSON data provided in request body"}`, w.Body.String())
}

func TestDuplicateRequestIDRejected(t *testing.T) {
	r := newTestRouter(t, nil)
	hdr := map[string]string{"X-Request-ID": "same-id"}

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/generate_recipe", `{"ingredients":["okra"]}`, hdr).Code)
	w := do(r, http.MethodPost, "/generate_recipe", `{"ingredients":["okra"]}`, hdr)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"Duplicate request"`)
}

func TestElucidateRecipe(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/elucidate_recipe", `{"recipeText":"Possum Pie\n- possum\n1. Catch it."}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got recipe.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Possum Pie", got.Title)

	w = do(r, http.MethodPost, "/elucidate_recipe", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"text":"Server error: Missing recipeText in request body"}`, w.Body.String())
}

func TestRateAndComments(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/rate_recipe", `{"recipe_title":"Grits","rating":5,"comment":"Yeehaw"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rating submitted successfully")

	w = do(r, http.MethodPost, "/rate_recipe", `{"recipe_id":"Grits","rating":3}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rating_count":2`)

	w = do(r, http.MethodGet, "/recipe_comments?recipe_title=Grits", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []ratings.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "Yeehaw", comments[0].Comment)

	w = do(r, http.MethodGet, "/recipe_comments?recipe_title=Nothing", "", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRateValidation(t *testing.T) {
	r := newTestRouter(t, nil)

	w := do(r, http.MethodPost, "/rate_recipe", `{"recipe_title":"Grits","rating":9}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"text":"Server error: Rating must be an integer between 1 and 5"}`, w.Body.String())

	w = do(r, http.MethodPost, "/rate_recipe", `{"recipe_title":"Grits"}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Missing")

	w = do(r, http.MethodPost, "/rate_recipe", `{"rating":4}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/recipe_comments", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.Requests = 2
		c.RateLimit.Window = time.Minute
	})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api", "", nil).Code)
	w := do(r, http.MethodGet, "/api", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestBodySizeLimit(t *testing.T) {
	r := newTestRouter(t, func(c *config.Config) { c.Server.MaxBodyBytes = 16 })
	w := do(r, http.MethodPost, "/generate_recipe", `{"ingredients":["chicken","pork","okra"]}`, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
