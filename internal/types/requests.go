package types

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"omitempty,max=255"`
}

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest is a partial update; nil fields are left alone.
// ClearBudget distinguishes an explicit null budget from an absent one.
type UpdateProfileRequest struct {
	FullName          *string  `json:"full_name" binding:"omitempty,max=255"`
	Email             *string  `json:"email" binding:"omitempty,email"`
	DietaryPreference *string  `json:"dietary_preference" binding:"omitempty,oneof=vegan keto vegetarian omnivore"`
	Allergies         *string  `json:"allergies"`
	Budget            *float64 `json:"budget" binding:"omitempty,gte=0"`
	ClearBudget       bool     `json:"-"`
}

// ChangePasswordRequest mirrors the three-field password form
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" binding:"required"`
	NewPassword1 string `json:"new_password1" binding:"required,min=8"`
	NewPassword2 string `json:"new_password2" binding:"required"`
}

// SaveRecipeRequest represents a request to save a recipe
type SaveRecipeRequest struct {
	Title        string   `json:"title" binding:"required,max=255"`
	Ingredients  string   `json:"ingredients" binding:"required"`
	Instructions string   `json:"instructions" binding:"required"`
	ImageURL     string   `json:"image_url" binding:"omitempty,max=500"`
	Cost         *float64 `json:"cost" binding:"omitempty,gte=0"`
}

// UpdateRecipeRequest is a partial update of a saved recipe
type UpdateRecipeRequest struct {
	Title        *string  `json:"title" binding:"omitempty,min=1,max=255"`
	Ingredients  *string  `json:"ingredients" binding:"omitempty,min=1"`
	Instructions *string  `json:"instructions" binding:"omitempty,min=1"`
	ImageURL     *string  `json:"image_url" binding:"omitempty,max=500"`
	Cost         *float64 `json:"cost" binding:"omitempty,gte=0"`
}

// DeleteRecipesRequest removes several saved recipes at once
type DeleteRecipesRequest struct {
	IDs []string `json:"recipe_ids" binding:"required,min=1,dive,uuid"`
}

// SuggestionRequest is the JSON form of the suggestion endpoint
type SuggestionRequest struct {
	Prompt string `json:"prompt" form:"prompt"`
}
