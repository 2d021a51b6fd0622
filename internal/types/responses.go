package types

import "github.com/smartbites/backend/internal/models"

// ProfileResponse is the profile as the frontend expects it
type ProfileResponse struct {
	FullName          string                   `json:"full_name"`
	Email             string                   `json:"email"`
	DietaryPreference models.DietaryPreference `json:"dietary_preference"`
	Allergies         string                   `json:"allergies"`
	Budget            *float64                 `json:"budget"`
}

// SuggestionResponse carries the cleaned model output
type SuggestionResponse struct {
	Response string `json:"response"`
	ImageKey string `json:"image_key,omitempty"`
}
