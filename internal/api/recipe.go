package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/smartbites/backend/internal/apperrors"
	"github.com/smartbites/backend/internal/middleware"
	"github.com/smartbites/backend/internal/service"
	"github.com/smartbites/backend/internal/types"
)

// RecipeHandler serves the caller's saved recipes
type RecipeHandler struct {
	recipeService service.IRecipeService
	authService   service.IAuthService
}

func NewRecipeHandler(recipeService service.IRecipeService, authService service.IAuthService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		authService:   authService,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	recipes.Use(middleware.AuthMiddleware(h.authService))
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", h.SaveRecipe)
		recipes.POST("/delete-multiple", h.DeleteRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.UpdateRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
	}
}

func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}

	recipe, err := h.recipeService.SaveRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRecipe) && recipe != nil {
			apperrors.Respond(c, apperrors.Conflict("Recipe already saved").With("id", recipe.ID))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	recipes, err := h.recipeService.ListRecipes(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := recipeID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		apperrors.Respond(c, recipeError(err))
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := recipeID(c)
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, &req)
	if err != nil {
		apperrors.Respond(c, recipeError(err))
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	id, ok := recipeID(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		apperrors.Respond(c, recipeError(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DeleteRecipes(c *gin.Context) {
	userID, _ := middleware.UserID(c)

	var req types.DeleteRecipesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, bindError(err))
		return
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			apperrors.Respond(c, apperrors.BadRequest("Invalid recipe ID"))
			return
		}
		ids = append(ids, id)
	}

	deleted, err := h.recipeService.DeleteRecipes(c.Request.Context(), userID, ids)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// recipeID parses the :id parameter; malformed IDs are answered as missing
func recipeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperrors.Respond(c, apperrors.NotFound("Recipe not found"))
		return uuid.Nil, false
	}
	return id, true
}

func recipeError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		return apperrors.NotFound("Recipe not found")
	case errors.Is(err, service.ErrDuplicateRecipe):
		return apperrors.Conflict("Recipe already saved")
	default:
		return apperrors.Internal(err)
	}
}
