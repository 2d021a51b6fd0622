package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/metrics"
)

const upstreamNutrition = "nutrition"

// NutritionService looks foods up in USDA FoodData Central
type NutritionService struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	cache    LookupCache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewNutritionService creates a new NutritionService instance
func NewNutritionService(cfg config.UpstreamConfig, logger *zap.Logger) *NutritionService {
	return &NutritionService{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  newUpstreamClient(cfg.Timeout),
		logger:  logger.Named("nutrition"),
	}
}

// WithCache enables caching of successful lookups
func (s *NutritionService) WithCache(cache LookupCache, ttl time.Duration) *NutritionService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

func (s *NutritionService) WithMetrics(m *metrics.Metrics) *NutritionService {
	s.metrics = m
	return s
}

type foodSearchResponse struct {
	Foods []json.RawMessage `json:"foods"`
}

// Lookup returns the first match for foodName exactly as the API sent it.
// It returns ErrNoNutritionData when the search matched nothing and
// ErrUpstreamUnavailable when the API could not be reached or refused.
func (s *NutritionService) Lookup(ctx context.Context, foodName string) (json.RawMessage, error) {
	foodName = strings.TrimSpace(foodName)
	if foodName == "" {
		return nil, ErrFoodNameRequired
	}

	cacheKey := "nutrition:" + strings.ToLower(foodName)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		s.metrics.UpstreamRequest(upstreamNutrition, metrics.OutcomeCached, 0)
		return cached, nil
	}

	query := url.Values{}
	query.Set("query", foodName)
	if s.apiKey != "" {
		query.Set("api_key", s.apiKey)
	}
	endpoint := s.baseURL + "/foods/search?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build nutrition request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.UpstreamRequest(upstreamNutrition, metrics.OutcomeError, time.Since(start))
		s.logger.Warn("nutrition request failed", zap.String("food", foodName), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.UpstreamRequest(upstreamNutrition, metrics.OutcomeError, time.Since(start))
		s.logger.Warn("nutrition API returned an error status",
			zap.String("food", foodName),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var body foodSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.metrics.UpstreamRequest(upstreamNutrition, metrics.OutcomeError, time.Since(start))
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUpstreamUnavailable, err)
	}

	if len(body.Foods) == 0 {
		s.metrics.UpstreamRequest(upstreamNutrition, metrics.OutcomeEmpty, time.Since(start))
		return nil, ErrNoNutritionData
	}

	s.metrics.UpstreamRequest(upstreamNutrition, metrics.OutcomeSuccess, time.Since(start))
	first := body.Foods[0]
	s.toCache(ctx, cacheKey, first)
	return first, nil
}

func (s *NutritionService) fromCache(ctx context.Context, key string) (json.RawMessage, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, ok
}

func (s *NutritionService) toCache(ctx context.Context, key string, value []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
