package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/metrics"
)

const upstreamRecipes = "recipes"

// CandidateRecipe is a recipe as returned by the recipe API. Only the
// ingredients text is needed for filtering; the upstream object is kept
// as-is and is what gets encoded back to clients.
type CandidateRecipe struct {
	Title       string
	Ingredients string
	raw         json.RawMessage
}

type candidateFields struct {
	Title       json.RawMessage `json:"title"`
	Ingredients string          `json:"ingredients"`
}

func (r *CandidateRecipe) UnmarshalJSON(data []byte) error {
	var fields candidateFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var title string
	if err := json.Unmarshal(fields.Title, &title); err == nil {
		r.Title = title
	}
	r.Ingredients = fields.Ingredients
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (r CandidateRecipe) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}
	return json.Marshal(struct {
		Title       string `json:"title"`
		Ingredients string `json:"ingredients"`
	}{r.Title, r.Ingredients})
}

// decodeCandidates reads a recipe array one element at a time so a single
// malformed record is skipped instead of failing the whole response.
func decodeCandidates(data []byte) ([]CandidateRecipe, int, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, 0, err
	}
	candidates := make([]CandidateRecipe, 0, len(elements))
	skipped := 0
	for _, element := range elements {
		var candidate CandidateRecipe
		if err := json.Unmarshal(element, &candidate); err != nil {
			skipped++
			continue
		}
		candidates = append(candidates, candidate)
	}
	return candidates, skipped, nil
}

// RecipeSearchService finds recipes that use every requested ingredient
type RecipeSearchService struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	maxConcurrency int
	cache          LookupCache
	cacheTTL       time.Duration
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewRecipeSearchService creates a new RecipeSearchService instance
func NewRecipeSearchService(cfg config.UpstreamConfig, search config.SearchConfig, logger *zap.Logger) *RecipeSearchService {
	limit := search.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	return &RecipeSearchService{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:         cfg.APIKey,
		client:         newUpstreamClient(cfg.Timeout),
		maxConcurrency: limit,
		cacheTTL:       search.CacheTTL,
		logger:         logger.Named("recipe_search"),
	}
}

// WithCache enables caching of per-ingredient results
func (s *RecipeSearchService) WithCache(cache LookupCache) *RecipeSearchService {
	s.cache = cache
	return s
}

func (s *RecipeSearchService) WithMetrics(m *metrics.Metrics) *RecipeSearchService {
	s.metrics = m
	return s
}

// Search queries the recipe API once per ingredient and keeps the
// candidates whose ingredient text mentions all of them as whole words.
// Results are ordered by ingredient, then by the order the API returned
// them. Overlapping hits are not merged. A failing lookup only removes
// that ingredient's candidates from the pool.
func (s *RecipeSearchService) Search(ctx context.Context, ingredients []string) ([]CandidateRecipe, error) {
	terms := NormalizeIngredients(ingredients)
	if len(terms) == 0 {
		return nil, ErrIngredientsRequired
	}

	perTerm := make([][]CandidateRecipe, len(terms))
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, term := range terms {
		g.Go(func() error {
			perTerm[i] = s.fetch(ctx, term)
			return nil
		})
	}
	_ = g.Wait()

	match := newIngredientMatcher(terms)
	fetched := 0
	results := make([]CandidateRecipe, 0)
	for _, candidates := range perTerm {
		fetched += len(candidates)
		for _, candidate := range candidates {
			if match(candidate.Ingredients) {
				results = append(results, candidate)
			}
		}
	}

	s.metrics.SearchCandidates(fetched, len(results))
	s.logger.Debug("recipe search finished",
		zap.Strings("ingredients", terms),
		zap.Int("fetched", fetched),
		zap.Int("kept", len(results)),
	)
	return results, nil
}

// fetch returns the candidates for one term, or nil when the lookup failed
func (s *RecipeSearchService) fetch(ctx context.Context, term string) []CandidateRecipe {
	cacheKey := "recipes:ingredient:" + strings.ToLower(term)
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if ok {
			if cached, _, err := decodeCandidates(data); err == nil {
				s.metrics.UpstreamRequest(upstreamRecipes, metrics.OutcomeCached, 0)
				return cached
			}
		}
	}

	start := time.Now()
	candidates, raw, err := s.request(ctx, term)
	if err != nil {
		s.metrics.UpstreamRequest(upstreamRecipes, metrics.OutcomeError, time.Since(start))
		s.logger.Warn("recipe lookup failed, skipping ingredient", zap.String("ingredient", term), zap.Error(err))
		return nil
	}

	outcome := metrics.OutcomeSuccess
	if len(candidates) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.UpstreamRequest(upstreamRecipes, outcome, time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, raw, s.cacheTTL); err != nil {
			s.logger.Warn("cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return candidates
}

func (s *RecipeSearchService) request(ctx context.Context, term string) ([]CandidateRecipe, []byte, error) {
	endpoint := s.baseURL + "/recipe?" + url.Values{"query": {term}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build recipe request: %w", err)
	}
	req.Header.Set("X-Api-Key", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("recipe API returned status %d", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, nil, fmt.Errorf("failed to decode recipe response: %w", err)
	}
	candidates, skipped, err := decodeCandidates(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("unexpected recipe response shape: %w", err)
	}
	if skipped > 0 {
		s.logger.Warn("skipped malformed recipe records", zap.String("ingredient", term), zap.Int("skipped", skipped))
	}
	return candidates, raw, nil
}

// NormalizeIngredients trims names, drops blanks and removes
// case-insensitive duplicates while keeping first-seen order.
func NormalizeIngredients(ingredients []string) []string {
	seen := make(map[string]struct{}, len(ingredients))
	terms := make([]string, 0, len(ingredients))
	for _, ingredient := range ingredients {
		term := strings.Join(strings.Fields(ingredient), " ")
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, term)
	}
	return terms
}

// newIngredientMatcher reports whether a text contains every term as a
// whole word. Word edges are any non letter/digit, so "egg" matches
// "1 egg, beaten" but not "eggs" or "eggplant".
func newIngredientMatcher(terms []string) func(string) bool {
	patterns := make([]*regexp.Regexp, 0, len(terms))
	for _, term := range terms {
		words := strings.Fields(term)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		patterns = append(patterns, regexp.MustCompile(
			`(?i)(?:^|[^\p{L}\p{N}])`+strings.Join(words, `\s+`)+`(?:$|[^\p{L}\p{N}])`,
		))
	}
	return func(text string) bool {
		for _, p := range patterns {
			if !p.MatchString(text) {
				return false
			}
		}
		return true
	}
}
