package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smartbites/backend/config"
	"github.com/smartbites/backend/internal/api"
	"github.com/smartbites/backend/internal/metrics"
	"github.com/smartbites/backend/internal/middleware"
	"github.com/smartbites/backend/internal/service"
)

// Dependencies are the collaborators the routes are built from.
// Redis, Metrics and Archive are optional.
type Dependencies struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Metrics *metrics.Metrics
	Logger  *zap.Logger

	AuthService    service.IAuthService
	ProfileService service.IProfileService
	RecipeService  service.IRecipeService
	Nutrition      service.INutritionService
	RecipeSearch   service.IRecipeSearchService
	Composer       service.IPromptComposer
	Inference      service.IInferenceService
	Archive        service.IImageArchive
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	if cfg.App.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(deps.Logger),
		middleware.RequestLogger(deps.Logger.Named("http")),
		middleware.CORS(cfg.Server.AllowedOrigins),
	)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.HTTPMiddleware())
		if cfg.Metrics.Enabled {
			router.GET(cfg.Metrics.Path, gin.WrapH(deps.Metrics.Handler()))
		}
	}

	api.NewHealthHandler(deps.DB, deps.Redis).RegisterRoutes(router)

	var limiter *middleware.RateLimiter
	if deps.Redis != nil {
		limiter = middleware.NewSuggestionRateLimiter(deps.Redis, cfg.RateLimit.SuggestionsPerHour)
	}
	fallback := middleware.NewIPRateLimiter(cfg.RateLimit.AnonymousRPS, cfg.RateLimit.AnonymousBurst)

	suggestions := api.NewSuggestionHandler(deps.Composer, deps.Inference, deps.ProfileService, deps.AuthService, deps.Logger).
		WithRateLimit(middleware.SuggestionLimit(limiter, fallback, deps.Logger.Named("rate_limit")))
	if deps.Archive != nil {
		suggestions.WithArchive(deps.Archive)
	}

	v1 := router.Group("/api/v1")
	api.NewAuthHandler(deps.AuthService, deps.Logger).RegisterRoutes(v1)
	api.NewProfileHandler(deps.ProfileService, deps.AuthService).RegisterRoutes(v1)
	api.NewRecipeHandler(deps.RecipeService, deps.AuthService).RegisterRoutes(v1)
	api.NewLookupHandler(deps.Nutrition, deps.RecipeSearch).RegisterRoutes(v1)
	suggestions.RegisterRoutes(v1)
	api.NewRateLimitHandler(limiter, deps.AuthService).RegisterRoutes(v1)

	return router
}
