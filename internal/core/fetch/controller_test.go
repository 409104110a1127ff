package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"chuckle-chow/internal/client"
	"chuckle-chow/internal/core/catalog"
	"chuckle-chow/internal/core/recipe"
	"chuckle-chow/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePicker struct {
	mu    sync.Mutex
	items []string
}

func (p *fakePicker) Ingredients() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.items...)
}

func (p *fakePicker) set(items ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = items
}

func (p *fakePicker) Surprise() map[catalog.Category]string {
	p.set("pork", "okra", "lemon", "shrimp", "cheese", "grits", "moonshine")
	return map[catalog.Category]string{catalog.Meat: "pork"}
}

func (p *fakePicker) Clear() { p.set() }

type serviceFunc func(ctx context.Context, req client.GenerateRequest) (*recipe.Recipe, error)

func (f serviceFunc) GenerateRecipe(ctx context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
	return f(ctx, req)
}

func newController(svc RecipeService, picker Picker) *Controller {
	return NewController(svc, picker, Options{DebounceWait: 20 * time.Millisecond})
}

func TestFetchRequiresIngredientsUnlessRandom(t *testing.T) {
	var calls int32
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		atomic.AddInt32(&calls, 1)
		return &recipe.Recipe{Title: "Random Grub"}, nil
	})
	c := newController(svc, &fakePicker{})

	err := c.FetchRecipe(context.Background(), false)
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))

	s := c.State()
	assert.Equal(t, MsgNoIngredients, s.Error)
	assert.Equal(t, Validation, s.ErrorKind)
	assert.False(t, s.CanRetry())
	assert.False(t, s.IsLoading)
	assert.Nil(t, s.Recipe)
	assert.Zero(t, atomic.LoadInt32(&calls))

	require.NoError(t, c.FetchRecipe(context.Background(), true))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, c.State().LastRandom)
}

func TestFetchRejectsTooManyIngredients(t *testing.T) {
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		t.Fatal("service must not be called")
		return nil, nil
	})
	p := &fakePicker{}
	p.set("a", "b", "c", "d", "e", "f", "g", "h")
	c := newController(svc, p)

	err := c.FetchRecipe(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, "Max 7 ingredients, ya hog!", c.State().Error)

	err = c.FetchRecipe(context.Background(), true)
	assert.True(t, common.IsValidationError(err))
}

func TestValidationLeavesRecipeUntouched(t *testing.T) {
	p := &fakePicker{}
	p.set("pork")
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		return &recipe.Recipe{Title: "Pork Surprise"}, nil
	})
	c := newController(svc, p)
	require.NoError(t, c.FetchRecipe(context.Background(), false))

	p.set()
	require.Error(t, c.FetchRecipe(context.Background(), false))

	s := c.State()
	require.NotNil(t, s.Recipe)
	assert.Equal(t, "Pork Surprise", s.Recipe.Title)
	assert.False(t, s.LastRandom)
}

func TestFetchBuildsRequest(t *testing.T) {
	var got client.GenerateRequest
	svc := serviceFunc(func(_ context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
		got = req
		return &recipe.Recipe{Title: "Okra Mess"}, nil
	})
	p := &fakePicker{}
	p.set("okra", "beer")
	c := NewController(svc, p, Options{NewRequestID: func() string { return "req-42" }})

	require.NoError(t, c.FetchRecipe(context.Background(), false))
	assert.Equal(t, client.GenerateRequest{Ingredients: []string{"okra", "beer"}, RequestID: "req-42"}, got)
	assert.Equal(t, "req-42", c.State().RequestID)
}

func TestLoadingFlagLifecycle(t *testing.T) {
	release := make(chan struct{})
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		<-release
		return &recipe.Recipe{Title: "Slow Stew"}, nil
	})
	p := &fakePicker{}
	p.set("pork")
	c := newController(svc, p)

	done := make(chan error, 1)
	go func() { done <- c.FetchRecipe(context.Background(), false) }()

	require.Eventually(t, func() bool { return c.State().IsLoading }, time.Second, time.Millisecond)
	s := c.State()
	assert.Nil(t, s.Recipe)
	assert.Empty(t, s.Error)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.State().IsLoading)
}

func TestFailuresProducePlaceholder(t *testing.T) {
	tests := []struct {
		name string
		svc  serviceFunc
		msg  string
		kind ErrorKind
	}{
		{
			name: "server message",
			svc: func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
				return nil, common.NewError(common.ErrCodeServiceError, "Server error: stove on fire", 500, nil)
			},
			msg:  "Server error: stove on fire",
			kind: Service,
		},
		{
			name: "semantic empty title",
			svc: func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
				return &recipe.Recipe{}, nil
			},
			msg:  "Invalid recipe received from server",
			kind: Semantic,
		},
		{
			name: "semantic error recipe",
			svc: func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
				return &recipe.Recipe{Title: "Error Recipe"}, nil
			},
			msg:  "Invalid recipe received from server",
			kind: Semantic,
		},
		{
			name: "plain transport error",
			svc: func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
				return nil, errors.New("dial tcp: connection refused")
			},
			msg:  "dial tcp: connection refused",
			kind: Transport,
		},
		{
			name: "panic",
			svc: func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
				panic("skillet exploded")
			},
			msg:  MsgGenericFailure,
			kind: Transport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePicker{}
			p.set("pork")
			c := newController(tt.svc, p)

			err := c.FetchRecipe(context.Background(), false)
			require.Error(t, err)

			s := c.State()
			assert.False(t, s.IsLoading)
			assert.Equal(t, tt.msg, s.Error)
			assert.Equal(t, tt.kind, s.ErrorKind)
			assert.True(t, s.CanRetry())
			require.NotNil(t, s.Recipe)
			assert.Equal(t, recipe.Placeholder(tt.msg), *s.Recipe)
		})
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	firstRelease := make(chan struct{})
	var n int32
	svc := serviceFunc(func(_ context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			<-firstRelease
			return &recipe.Recipe{Title: "Old News"}, nil
		}
		return &recipe.Recipe{Title: "Fresh Catch"}, nil
	})
	p := &fakePicker{}
	p.set("catfish")
	c := newController(svc, p)

	first := make(chan error, 1)
	go func() { first <- c.FetchRecipe(context.Background(), false) }()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&n) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, c.FetchRecipe(context.Background(), false))
	close(firstRelease)
	assert.ErrorIs(t, <-first, ErrSuperseded)

	s := c.State()
	require.NotNil(t, s.Recipe)
	assert.Equal(t, "Fresh Catch", s.Recipe.Title)
	assert.False(t, s.IsLoading)
}

func TestStaleFinishDoesNotClearNewerLoading(t *testing.T) {
	secondRelease := make(chan struct{})
	var n int32
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		if atomic.AddInt32(&n, 1) == 2 {
			<-secondRelease
		}
		return &recipe.Recipe{Title: "Grub"}, nil
	})
	p := &fakePicker{}
	p.set("pork")
	c := newController(svc, p)

	// 第一次請求先卡住，第二次開始後才放行第一次
	firstRelease := make(chan struct{})
	var once sync.Once
	c.svc = serviceFunc(func(ctx context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
		if atomic.LoadInt32(&n) == 0 {
			atomic.AddInt32(&n, 1)
			<-firstRelease
			return &recipe.Recipe{Title: "Old"}, nil
		}
		once.Do(func() { close(firstRelease) })
		return svc(ctx, req)
	})

	first := make(chan error, 1)
	go func() { first <- c.FetchRecipe(context.Background(), false) }()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&n) == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- c.FetchRecipe(context.Background(), false) }()

	assert.ErrorIs(t, <-first, ErrSuperseded)
	assert.True(t, c.State().IsLoading)

	close(secondRelease)
	require.NoError(t, <-second)
	assert.False(t, c.State().IsLoading)
}

func TestRetryUsesLastRandom(t *testing.T) {
	var requests []client.GenerateRequest
	var mu sync.Mutex
	fail := true
	svc := serviceFunc(func(_ context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, req)
		if fail {
			fail = false
			return nil, common.NewError(common.ErrCodeServiceError, "Server error: 503", 503, nil)
		}
		return &recipe.Recipe{Title: "Second Helping"}, nil
	})
	c := newController(svc, &fakePicker{})

	require.Error(t, c.FetchRecipe(context.Background(), true))
	require.NoError(t, c.Retry(context.Background()))

	require.Len(t, requests, 2)
	assert.True(t, requests[1].IsRandom)
	assert.NotEqual(t, requests[0].RequestID, requests[1].RequestID)
	assert.Equal(t, "Second Helping", c.State().Recipe.Title)
	assert.Empty(t, c.State().Error)
}

func TestFetchDebouncedRunsOnlyLast(t *testing.T) {
	var calls int32
	var last client.GenerateRequest
	var mu sync.Mutex
	svc := serviceFunc(func(_ context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		last = req
		mu.Unlock()
		return &recipe.Recipe{Title: "Debounced Dinner"}, nil
	})
	p := &fakePicker{}
	c := NewController(svc, p, Options{DebounceWait: 200 * time.Millisecond})

	picks := [][]string{
		{"pork"},
		{"pork", "okra"},
		{"pork", "okra", "lemon"},
		{"pork", "okra", "lemon", "shrimp"},
		{"pork", "okra", "lemon", "shrimp", "beer"},
	}
	for i, items := range picks {
		p.set(items...)
		c.FetchDebounced(context.Background(), i == len(picks)-1)
		time.Sleep(10 * time.Millisecond)
	}
	assert.Zero(t, atomic.LoadInt32(&calls))

	require.Eventually(t, func() bool {
		s := c.State()
		return s.Recipe != nil && !s.IsLoading
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(300 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, last.IsRandom)
	assert.Equal(t, picks[len(picks)-1], last.Ingredients)
}

func TestSurpriseSchedulesRandomFetch(t *testing.T) {
	var got client.GenerateRequest
	var mu sync.Mutex
	svc := serviceFunc(func(_ context.Context, req client.GenerateRequest) (*recipe.Recipe, error) {
		mu.Lock()
		got = req
		mu.Unlock()
		return &recipe.Recipe{Title: "Wild Card"}, nil
	})
	c := newController(svc, &fakePicker{})

	c.Surprise(context.Background())
	assert.True(t, c.Pending())

	require.Eventually(t, func() bool { return c.State().Recipe != nil }, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.True(t, got.IsRandom)
	assert.Len(t, got.Ingredients, 7)
}

func TestClearResetsAndDropsInFlight(t *testing.T) {
	release := make(chan struct{})
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		<-release
		return &recipe.Recipe{Title: "Too Late"}, nil
	})
	p := &fakePicker{}
	p.set("pork")
	c := newController(svc, p)

	done := make(chan error, 1)
	go func() { done <- c.FetchRecipe(context.Background(), true) }()
	require.Eventually(t, func() bool { return c.State().IsLoading }, time.Second, time.Millisecond)

	c.Clear()
	close(release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	assert.Equal(t, State{}, c.State())
	assert.Empty(t, p.Ingredients())
}

func TestSubscribersSeeTransitions(t *testing.T) {
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		return &recipe.Recipe{Title: "Observed Okra"}, nil
	})
	p := &fakePicker{}
	p.set("okra")
	c := newController(svc, p)

	var seen []State
	unsubscribe := c.Subscribe(func(s State) { seen = append(seen, s) })
	require.NoError(t, c.FetchRecipe(context.Background(), false))
	unsubscribe()
	require.NoError(t, c.FetchRecipe(context.Background(), false))

	require.Len(t, seen, 2)
	assert.True(t, seen[0].IsLoading)
	assert.False(t, seen[1].IsLoading)
	assert.Equal(t, "Observed Okra", seen[1].Recipe.Title)
}

func TestStateCopiesDoNotLeak(t *testing.T) {
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		return &recipe.Recipe{Title: "Grits", Tips: recipe.StringList{"stir"}}, nil
	})
	p := &fakePicker{}
	p.set("grits")
	c := newController(svc, p)
	require.NoError(t, c.FetchRecipe(context.Background(), false))

	s := c.State()
	s.Recipe.Title = "Mutated"
	s.Recipe.Tips[0] = "mutated"

	assert.Equal(t, "Grits", c.State().Recipe.Title)
	assert.Equal(t, "stir", c.State().Recipe.Tips[0])
}

const moonshinePorkBody = `{
	"title": "Moonshine Pork",
	"ingredients": ["pork", ["moonshine", "1 cup"]],
	"steps": ["Marinate", "Grill"],
	"nutrition": {"calories": 330, "protein": 25, "fat": 15, "chaos_factor": 2},
	"equipment": [], "cooking_time": 45, "difficulty": "easy", "servings": 4,
	"tips": [], "chaos_gear": "tire iron", "shareText": ""
}`

func newRecipeServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestEndToEndMoonshinePork(t *testing.T) {
	srv := newRecipeServer(moonshinePorkBody)
	defer srv.Close()

	sel := catalog.NewSelection(catalog.Default())
	require.NoError(t, sel.Set(catalog.Meat, "pork"))
	require.NoError(t, sel.Set(catalog.DevilWater, "moonshine"))

	c := newController(client.New(client.Options{BaseURL: srv.URL}), sel)
	require.NoError(t, c.FetchRecipe(context.Background(), false))

	s := c.State()
	assert.False(t, s.IsLoading)
	assert.Empty(t, s.Error)
	assert.Equal(t, NoError, s.ErrorKind)
	assert.False(t, s.CanRetry())
	require.NotNil(t, s.Recipe)
	assert.Equal(t, "Moonshine Pork", s.Recipe.Title)
	assert.Equal(t, []string{"pork", "moonshine (1 cup)"}, recipe.IngredientLines(s.Recipe.Ingredients))
	assert.Equal(t, []string{"Marinate", "Grill"}, s.Recipe.StepTexts())
	assert.Equal(t, []string{"pork", "moonshine"}, sel.Ingredients())
}

func TestStoredRecipeMatchesParsedResponse(t *testing.T) {
	srv := newRecipeServer(moonshinePorkBody)
	defer srv.Close()

	var parsed recipe.Recipe
	require.NoError(t, json.Unmarshal([]byte(moonshinePorkBody), &parsed))

	p := &fakePicker{}
	p.set("pork", "moonshine")
	c := newController(client.New(client.Options{BaseURL: srv.URL}), p)
	require.NoError(t, c.FetchRecipe(context.Background(), false))

	s := c.State()
	require.NotNil(t, s.Recipe)
	assert.Equal(t, parsed, *s.Recipe)

	want, err := json.Marshal(parsed)
	require.NoError(t, err)
	got, err := json.Marshal(s.Recipe)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
	assert.Contains(t, string(got), `"equipment":[]`)
	assert.Contains(t, string(got), `"tips":[]`)
}

func TestSubscriberMayCallBackIntoController(t *testing.T) {
	var n int32
	svc := serviceFunc(func(context.Context, client.GenerateRequest) (*recipe.Recipe, error) {
		if atomic.AddInt32(&n, 1) == 1 {
			return nil, common.NewError(common.ErrCodeServiceError, "Server error: 502", 502, nil)
		}
		return &recipe.Recipe{Title: "Second Wind"}, nil
	})
	p := &fakePicker{}
	p.set("okra")
	c := newController(svc, p)

	var retried int32
	var last State
	var mu sync.Mutex
	c.Subscribe(func(s State) {
		mu.Lock()
		last = s
		mu.Unlock()
		if s.CanRetry() && atomic.CompareAndSwapInt32(&retried, 0, 1) {
			assert.NoError(t, c.Retry(context.Background()))
		}
	})

	done := make(chan error, 1)
	go func() { done <- c.FetchRecipe(context.Background(), false) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("controller deadlocked when a subscriber called Retry")
	}

	assert.Equal(t, int32(2), atomic.LoadInt32(&n))
	s := c.State()
	require.NotNil(t, s.Recipe)
	assert.Equal(t, "Second Wind", s.Recipe.Title)
	mu.Lock()
	defer mu.Unlock()
	require.NotNil(t, last.Recipe)
	assert.Equal(t, "Second Wind", last.Recipe.Title)
	assert.False(t, last.IsLoading)
}
