package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smartbites/backend/internal/models"
	"github.com/smartbites/backend/internal/types"
)

// RecipeService manages a user's saved recipes
type RecipeService struct {
	db *gorm.DB
}

// Ensure RecipeService implements IRecipeService
var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// SaveRecipe stores a recipe unless the user already saved one with the
// same title, ingredients and instructions. In that case the existing
// record is returned together with ErrDuplicateRecipe. The unique
// (user_id, fingerprint) index settles concurrent saves of the same recipe.
func (s *RecipeService) SaveRecipe(ctx context.Context, userID uuid.UUID, req *types.SaveRecipeRequest) (*models.SavedRecipe, error) {
	recipe := &models.SavedRecipe{
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		Ingredients:  strings.TrimSpace(req.Ingredients),
		Instructions: strings.TrimSpace(req.Instructions),
		ImageURL:     strings.TrimSpace(req.ImageURL),
		Cost:         req.Cost,
	}
	recipe.Fingerprint = models.RecipeFingerprint(recipe.Title, recipe.Ingredients, recipe.Instructions)

	existing, err := s.findByFingerprint(ctx, userID, recipe.Fingerprint, uuid.Nil)
	if err == nil {
		return existing, ErrDuplicateRecipe
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate recipe: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		if existing, findErr := s.findByFingerprint(ctx, userID, recipe.Fingerprint, uuid.Nil); findErr == nil {
			return existing, ErrDuplicateRecipe
		}
		return nil, fmt.Errorf("failed to save recipe: %w", err)
	}
	return recipe, nil
}

// findByFingerprint looks up the user's recipe with fingerprint, ignoring
// the recipe with id except when id is uuid.Nil
func (s *RecipeService) findByFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string, except uuid.UUID) (*models.SavedRecipe, error) {
	query := s.db.WithContext(ctx).Where("user_id = ? AND fingerprint = ?", userID, fingerprint)
	if except != uuid.Nil {
		query = query.Where("id <> ?", except)
	}
	var recipe models.SavedRecipe
	if err := query.First(&recipe).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns the user's saved recipes, newest first
func (s *RecipeService) ListRecipes(ctx context.Context, userID uuid.UUID) ([]models.SavedRecipe, error) {
	recipes := make([]models.SavedRecipe, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("saved_at DESC").
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe retrieves one of the user's recipes
func (s *RecipeService) GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.SavedRecipe, error) {
	var recipe models.SavedRecipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, fmt.Errorf("failed to load recipe: %w", err)
	}
	return &recipe, nil
}

// UpdateRecipe applies the non-nil fields of req
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.SavedRecipe, error) {
	recipe, err := s.GetRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Ingredients != nil {
		updates["ingredients"] = strings.TrimSpace(*req.Ingredients)
	}
	if req.Instructions != nil {
		updates["instructions"] = strings.TrimSpace(*req.Instructions)
	}
	if req.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.Cost != nil {
		updates["cost"] = *req.Cost
	}
	if len(updates) == 0 {
		return recipe, nil
	}

	title, ingredients, instructions := recipe.Title, recipe.Ingredients, recipe.Instructions
	if v, ok := updates["title"].(string); ok {
		title = v
	}
	if v, ok := updates["ingredients"].(string); ok {
		ingredients = v
	}
	if v, ok := updates["instructions"].(string); ok {
		instructions = v
	}
	fingerprint := models.RecipeFingerprint(title, ingredients, instructions)
	updates["fingerprint"] = fingerprint

	if err := s.db.WithContext(ctx).Model(recipe).Updates(updates).Error; err != nil {
		if _, findErr := s.findByFingerprint(ctx, userID, fingerprint, id); findErr == nil {
			return nil, ErrDuplicateRecipe
		}
		return nil, fmt.Errorf("failed to update recipe: %w", err)
	}
	return s.GetRecipe(ctx, userID, id)
}

// DeleteRecipe removes one of the user's recipes
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.SavedRecipe{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete recipe: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// DeleteRecipes removes the listed recipes that belong to the user and
// reports how many were deleted. IDs owned by others are ignored.
func (s *RecipeService) DeleteRecipes(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.SavedRecipe{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete recipes: %w", result.Error)
	}
	return result.RowsAffected, nil
}
