package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chuckle-chow/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(Options{BaseURL: srv.URL})
	c.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return c
}

func TestGenerateRecipeSendsRequest(t *testing.T) {
	var got GenerateRequest
	var cb, header string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate_recipe", r.URL.Path)
		cb = r.URL.Query().Get("cb")
		header = r.Header.Get("X-Request-ID")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"Moonshine Pork","ingredients":["pork",["moonshine","1 cup"]],"steps":["Marinate","Grill"],"nutrition":{"calories":330}}`))
	})

	r, err := c.GenerateRecipe(context.Background(), GenerateRequest{
		Ingredients: []string{"pork", "moonshine"},
		RequestID:   "req-1",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"pork", "moonshine"}, got.Ingredients)
	assert.False(t, got.IsRandom)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "req-1", header)
	assert.Equal(t, "1700000000000", cb)
	assert.Equal(t, "Moonshine Pork", r.Title)
	assert.Equal(t, "moonshine (1 cup)", r.Ingredients[1].Line())
}

func TestGenerateRecipeNilIngredientsSendsEmptyList(t *testing.T) {
	var raw map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"title":"Random Grub"}`))
	})

	_, err := c.GenerateRecipe(context.Background(), GenerateRequest{IsRandom: true})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, raw["ingredients"])
	assert.Equal(t, true, raw["isRandom"])
}

func TestGenerateRecipeServerErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"text wins", 500, `{"text":"Server error: stove on fire","error":"other"}`, "Server error: stove on fire"},
		{"error field", 400, `{"error":"bad ingredients"}`, "bad ingredients"},
		{"no body", 502, ``, "Server error: 502"},
		{"html body", 503, `<html>down</html>`, "Server error: 503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.GenerateRecipe(context.Background(), GenerateRequest{Ingredients: []string{"pork"}})
			require.Error(t, err)
			ce, ok := common.AsCustomError(err)
			require.True(t, ok)
			assert.Equal(t, common.ErrCodeServiceError, ce.Code)
			assert.Equal(t, tt.status, ce.Status)
			assert.Equal(t, tt.want, ce.Message)
		})
	}
}

func TestGenerateRecipeNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Options{BaseURL: url})
	_, err := c.GenerateRecipe(context.Background(), GenerateRequest{Ingredients: []string{"pork"}})
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeNetworkError, common.ErrorCode(err))
}

func TestGenerateRecipeMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title":`))
	})
	_, err := c.GenerateRecipe(context.Background(), GenerateRequest{Ingredients: []string{"pork"}})
	assert.Equal(t, common.ErrCodeInvalidRecipe, common.ErrorCode(err))
}

func TestIngredients(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ingredients", r.URL.Path)
		w.Write([]byte(`{"meat":[{"name":"pork","emoji":"🥓"}],"devil_water":[{"name":"moonshine","emoji":"🥃"}]}`))
	})
	items, err := c.Ingredients(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pork", items["meat"][0].Name)
	assert.Equal(t, "moonshine", items["devil_water"][0].Name)
}

func TestRateAndComments(t *testing.T) {
	var rated RateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rate_recipe":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&rated))
			w.Write([]byte(`{"message":"Rating submitted successfully"}`))
		case "/recipe_comments":
			assert.Equal(t, "Moonshine Pork", r.URL.Query().Get("recipe_title"))
			w.Write([]byte(`[{"comment":"Dang good","created_at":"2024-05-01 10:00:00"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	require.NoError(t, c.Rate(context.Background(), RateRequest{RecipeTitle: "Moonshine Pork", Rating: 5, Comment: "Dang good"}))
	assert.Equal(t, RateRequest{RecipeTitle: "Moonshine Pork", Rating: 5, Comment: "Dang good"}, rated)

	comments, err := c.Comments(context.Background(), "Moonshine Pork")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Dang good", comments[0].Comment)
}

func TestElucidate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "fry it up", body["recipeText"])
		w.Write([]byte(`{"title":"Fried Thing","text":"fry it up"}`))
	})
	r, err := c.Elucidate(context.Background(), "fry it up")
	require.NoError(t, err)
	assert.Equal(t, "Fried Thing", r.Title)
}
