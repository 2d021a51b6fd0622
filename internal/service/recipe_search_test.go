package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
)

type fakeRecipeAPI struct {
	server *httptest.Server
	calls  atomic.Int32
}

// newFakeRecipeAPI serves canned results per query term. Terms listed in
// failing answer 500; delays hold a term's response back.
func newFakeRecipeAPI(t *testing.T, results map[string][]CandidateRecipe, failing map[string]bool, delays map[string]time.Duration) *fakeRecipeAPI {
	t.Helper()
	api := &fakeRecipeAPI{}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.calls.Add(1)
		if r.URL.Path != "/recipe" || r.Header.Get("X-Api-Key") != "ninjas-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		term := r.URL.Query().Get("query")
		if d, ok := delays[term]; ok {
			time.Sleep(d)
		}
		if failing[term] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		list := results[term]
		if list == nil {
			list = []CandidateRecipe{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func newTestSearchService(baseURL string) *RecipeSearchService {
	return NewRecipeSearchService(
		config.UpstreamConfig{BaseURL: baseURL, APIKey: "ninjas-key", Timeout: 2 * time.Second},
		config.SearchConfig{MaxConcurrency: 4, CacheTTL: time.Minute},
		zap.NewNop(),
	)
}

func titles(recipes []CandidateRecipe) []string {
	out := make([]string, len(recipes))
	for i, r := range recipes {
		out[i] = r.Title
	}
	return out
}

func TestRecipeSearchService_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep only recipes containing every ingredient", func(t *testing.T) {
		api := newFakeRecipeAPI(t, map[string][]CandidateRecipe{
			"salt": {
				{Title: "Salted Caramel", Ingredients: "1 cup sugar|1 tsp salt"},
				{Title: "Steak", Ingredients: "1 steak|1 tsp salt|1/2 tsp black pepper"},
			},
			"pepper": {
				{Title: "Pepper Soup", Ingredients: "2 peppers|1 tsp pepper"},
				{Title: "Eggs", Ingredients: "2 eggs|salt|pepper"},
			},
		}, nil, nil)

		results, err := newTestSearchService(api.server.URL).Search(ctx, []string{"salt", "pepper"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Steak", "Eggs"}, titles(results))
	})

	t.Run("should ignore a failing ingredient", func(t *testing.T) {
		api := newFakeRecipeAPI(t, map[string][]CandidateRecipe{
			"rice": {{Title: "Fried Rice", Ingredients: "2 cups rice|1 egg|soy sauce"}},
		}, map[string]bool{"egg": true}, nil)

		results, err := newTestSearchService(api.server.URL).Search(ctx, []string{"egg", "rice"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Fried Rice"}, titles(results))
	})

	t.Run("should order by ingredient then upstream order regardless of completion", func(t *testing.T) {
		api := newFakeRecipeAPI(t, map[string][]CandidateRecipe{
			"garlic": {
				{Title: "A1", Ingredients: "garlic|onion"},
				{Title: "A2", Ingredients: "onion, garlic"},
			},
			"onion": {
				{Title: "B1", Ingredients: "Onion; Garlic"},
				{Title: "B2", Ingredients: "onion garlic butter"},
			},
		}, nil, map[string]time.Duration{"garlic": 150 * time.Millisecond})

		results, err := newTestSearchService(api.server.URL).Search(ctx, []string{"garlic", "onion"})
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A2", "B1", "B2"}, titles(results))
	})

	t.Run("should not merge overlapping hits", func(t *testing.T) {
		shared := CandidateRecipe{Title: "Omelette", Ingredients: "3 egg|1 cup milk"}
		api := newFakeRecipeAPI(t, map[string][]CandidateRecipe{
			"egg":  {shared},
			"milk": {shared},
		}, nil, nil)

		results, err := newTestSearchService(api.server.URL).Search(ctx, []string{"egg", "milk"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Omelette", "Omelette"}, titles(results))
	})

	t.Run("should return an empty list when every lookup fails", func(t *testing.T) {
		api := newFakeRecipeAPI(t, nil, map[string]bool{"tofu": true, "kale": true}, nil)

		results, err := newTestSearchService(api.server.URL).Search(ctx, []string{"tofu", "kale"})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("should survive an unreachable API", func(t *testing.T) {
		api := newFakeRecipeAPI(t, nil, nil, nil)
		url := api.server.URL
		api.server.Close()

		results, err := newTestSearchService(url).Search(ctx, []string{"banana"})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("should keep well-formed records next to loosely typed ones", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"title":"Brine","ingredients":"1 tsp salt|water","servings":4,"instructions":"Stir."},
				{"title":"Broken","ingredients":12,"servings":"1","instructions":"?"},
				{"title":"Salt Crust Fish","ingredients":"salt|1 fish","servings":"2","instructions":"Bake."}
			]`))
		}))
		t.Cleanup(server.Close)

		results, err := newTestSearchService(server.URL).Search(ctx, []string{"salt"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Brine", "Salt Crust Fish"}, titles(results))

		encoded, err := json.Marshal(results)
		require.NoError(t, err)
		assert.JSONEq(t, `[
			{"title":"Brine","ingredients":"1 tsp salt|water","servings":4,"instructions":"Stir."},
			{"title":"Salt Crust Fish","ingredients":"salt|1 fish","servings":"2","instructions":"Bake."}
		]`, string(encoded))
	})

	t.Run("should reject an empty ingredient list", func(t *testing.T) {
		_, err := newTestSearchService("http://127.0.0.1:1").Search(ctx, []string{" ", ""})
		assert.ErrorIs(t, err, ErrIngredientsRequired)
	})

	t.Run("should query each distinct ingredient once", func(t *testing.T) {
		api := newFakeRecipeAPI(t, map[string][]CandidateRecipe{
			"Basil": {{Title: "Pesto", Ingredients: "basil|pine nuts"}},
		}, nil, nil)

		results, err := newTestSearchService(api.server.URL).Search(ctx, []string{"Basil", "basil", " BASIL "})
		require.NoError(t, err)
		assert.Equal(t, []string{"Pesto"}, titles(results))
		assert.Equal(t, int32(1), api.calls.Load())
	})

	t.Run("should serve repeated lookups from the cache", func(t *testing.T) {
		api := newFakeRecipeAPI(t, map[string][]CandidateRecipe{
			"lentils": {{Title: "Dal", Ingredients: "1 cup lentils|turmeric"}},
		}, nil, nil)
		cache := newMemoryCache()
		svc := newTestSearchService(api.server.URL).WithCache(cache)

		first, err := svc.Search(ctx, []string{"lentils"})
		require.NoError(t, err)
		second, err := svc.Search(ctx, []string{"Lentils"})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int32(1), api.calls.Load())
		assert.Equal(t, 1, cache.sets)
	})

	t.Run("should not cache failures", func(t *testing.T) {
		api := newFakeRecipeAPI(t, nil, map[string]bool{"quinoa": true}, nil)
		cache := newMemoryCache()
		svc := newTestSearchService(api.server.URL).WithCache(cache)

		_, _ = svc.Search(ctx, []string{"quinoa"})
		_, _ = svc.Search(ctx, []string{"quinoa"})

		assert.Equal(t, int32(2), api.calls.Load())
		assert.Zero(t, cache.sets)
	})
}

func TestIngredientMatcher(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
		text  string
		want  bool
	}{
		{"exact token", []string{"salt"}, "1 tsp salt", true},
		{"case insensitive", []string{"Salt"}, "1 TSP SALT", true},
		{"prefix of a longer word", []string{"egg"}, "eggplant parmesan", false},
		{"plural does not match", []string{"egg"}, "2 eggs", false},
		{"delimited by punctuation", []string{"egg"}, "1 egg, beaten|flour", true},
		{"suffix of a longer word", []string{"salt"}, "unsalted butter", false},
		{"multi word phrase", []string{"olive oil"}, "2 tbsp Olive  Oil", true},
		{"all terms required", []string{"salt", "pepper"}, "1 tsp salt", false},
		{"all terms present", []string{"salt", "pepper"}, "pepper|salt", true},
		{"regex metacharacters are literal", []string{"1/2"}, "1/2 cup sugar", true},
		{"accented letters are word characters", []string{"jalapeño"}, "1 jalapeños", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := newIngredientMatcher(NormalizeIngredients(tt.terms))
			assert.Equal(t, tt.want, match(tt.text))
		})
	}
}

func TestNormalizeIngredients(t *testing.T) {
	got := NormalizeIngredients([]string{" Tomato ", "", "tomato", "red  onion", "TOMATO", "basil"})
	assert.Equal(t, []string{"Tomato", "red onion", "basil"}, got)
	assert.Empty(t, NormalizeIngredients(nil))
}
