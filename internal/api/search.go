package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/service"
)

// LookupHandler proxies the public food-data lookups
type LookupHandler struct {
	nutrition service.INutritionService
	recipes   service.IRecipeSearchService
}

func NewLookupHandler(nutrition service.INutritionService, recipes service.IRecipeSearchService) *LookupHandler {
	return &LookupHandler{nutrition: nutrition, recipes: recipes}
}

func (h *LookupHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/nutrition", h.Nutrition)
	router.GET("/recipe-search", h.RecipeSearch)
}

// Nutrition returns the best USDA match for ?food=
func (h *LookupHandler) Nutrition(c *gin.Context) {
	food := strings.TrimSpace(c.Query("food"))
	if food == "" {
		apperrors.Respond(c, apperrors.BadRequest("Food name is required"))
		return
	}

	data, err := h.nutrition.Lookup(c.Request.Context(), food)
	if err != nil {
		if errors.Is(err, service.ErrNoNutritionData) || errors.Is(err, service.ErrUpstreamUnavailable) {
			apperrors.Respond(c, apperrors.Wrap(err, apperrors.CodeNotFound, "No data found"))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// RecipeSearch returns recipes containing every ?ingredient= given
func (h *LookupHandler) RecipeSearch(c *gin.Context) {
	ingredients := service.NormalizeIngredients(c.QueryArray("ingredient"))
	if len(ingredients) == 0 {
		apperrors.Respond(c, apperrors.BadRequest("At least one ingredient is required"))
		return
	}

	recipes, err := h.recipes.Search(c.Request.Context(), ingredients)
	if err != nil {
		if errors.Is(err, service.ErrIngredientsRequired) {
			apperrors.Respond(c, apperrors.BadRequest("At least one ingredient is required"))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, recipes)
}
