package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/database"
	"github.com/smartbites/backend/internal/metrics"
	"github.com/smartbites/backend/internal/router"
	"github.com/smartbites/backend/internal/service"
)

// App owns every long-lived resource of the API process
type App struct {
	Server *Server
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

// NewApp connects to the stores and builds the services and routes.
// Redis and S3 are optional: failures there are logged and the app runs
// without the token denylist, lookup cache, shared rate limiter or image
// archive.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, logger); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, continuing without it", zap.Error(err))
			redisClient = nil
		}
	}

	m := metrics.New()

	var denylist service.TokenDenylist
	var cache service.LookupCache
	if redisClient != nil {
		denylist = service.NewRedisTokenDenylist(redisClient)
		cache = service.NewRedisLookupCache(redisClient)
	}

	nutrition := service.NewNutritionService(cfg.Nutrition, logger).WithMetrics(m)
	recipeSearch := service.NewRecipeSearchService(cfg.Recipes, cfg.Search, logger).WithMetrics(m)
	if cache != nil {
		nutrition.WithCache(cache, cfg.Search.CacheTTL)
		recipeSearch.WithCache(cache)
	}

	deps := router.Dependencies{
		DB:             db,
		Redis:          redisClient,
		Metrics:        m,
		Logger:         logger,
		AuthService:    service.NewAuthService(db, cfg.Auth, denylist, logger),
		ProfileService: service.NewProfileService(db),
		RecipeService:  service.NewRecipeService(db),
		Nutrition:      nutrition,
		RecipeSearch:   recipeSearch,
		Composer:       service.NewPromptComposer(cfg.Prompt, cfg.Ollama.Model),
		Inference:      service.NewInferenceService(cfg.Ollama, logger).WithMetrics(m),
	}

	if cfg.Storage.ArchiveImages {
		s3Config, err := config.NewS3Config(ctx, cfg.Storage)
		if err != nil {
			logger.Warn("image archive disabled", zap.Error(err))
		} else {
			deps.Archive = service.NewImageArchive(s3Config, logger)
		}
	}

	handler := router.SetupRouter(cfg, deps)
	return &App{
		Server: New(cfg.Server, handler, logger),
		db:     db,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Close releases the database and Redis connections
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if err := database.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}
