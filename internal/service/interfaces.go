package service

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"

	"github.com/smartbites/backend/internal/models"
	"github.com/smartbites/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *types.ChangePasswordRequest) error
}

// IProfileService defines the interface for user profile operations
type IProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error)
	GetProfileRecord(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.ProfileResponse, error)
}

// IRecipeService defines the interface for saved recipe operations
type IRecipeService interface {
	SaveRecipe(ctx context.Context, userID uuid.UUID, req *types.SaveRecipeRequest) (*models.SavedRecipe, error)
	ListRecipes(ctx context.Context, userID uuid.UUID) ([]models.SavedRecipe, error)
	GetRecipe(ctx context.Context, userID, id uuid.UUID) (*models.SavedRecipe, error)
	UpdateRecipe(ctx context.Context, userID, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.SavedRecipe, error)
	DeleteRecipe(ctx context.Context, userID, id uuid.UUID) error
	DeleteRecipes(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// INutritionService looks up a single food
type INutritionService interface {
	Lookup(ctx context.Context, foodName string) (json.RawMessage, error)
}

// IRecipeSearchService searches recipes by ingredients
type IRecipeSearchService interface {
	Search(ctx context.Context, ingredients []string) ([]CandidateRecipe, error)
}

// IPromptComposer builds the payload sent to the model
type IPromptComposer interface {
	Compose(prompt string, profile ProfileContext, image io.Reader) (PromptPayload, error)
}

// IInferenceService runs a composed prompt through the model
type IInferenceService interface {
	Generate(ctx context.Context, payload PromptPayload) (*InferenceResult, error)
}

// IImageArchive stores uploaded images
type IImageArchive interface {
	Store(ctx context.Context, owner, filename string, data []byte) (string, error)
}

var (
	_ INutritionService    = (*NutritionService)(nil)
	_ IRecipeSearchService = (*RecipeSearchService)(nil)
	_ IPromptComposer      = (*PromptComposer)(nil)
	_ IInferenceService    = (*InferenceService)(nil)
	_ IImageArchive        = (*ImageArchive)(nil)
)
