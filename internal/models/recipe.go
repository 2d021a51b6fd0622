package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SavedRecipe is a recipe a user kept from search or suggestions
type SavedRecipe struct {
	ID           uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       uuid.UUID `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_saved_recipes_user_fingerprint,priority:1" json:"-"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Ingredients  string    `gorm:"type:text;not null" json:"ingredients"`
	Instructions string    `gorm:"type:text;not null" json:"instructions"`
	ImageURL     string    `gorm:"size:500" json:"image_url"`
	Cost         *float64  `gorm:"type:numeric(10,2)" json:"cost"`
	Fingerprint  string    `gorm:"size:64;not null;uniqueIndex:idx_saved_recipes_user_fingerprint,priority:2" json:"-"`
	SavedAt      time.Time `gorm:"autoCreateTime;index" json:"saved_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *SavedRecipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Fingerprint == "" {
		r.Fingerprint = RecipeFingerprint(r.Title, r.Ingredients, r.Instructions)
	}
	return nil
}

// RecipeFingerprint identifies a recipe by its title, ingredients and
// instructions. A user cannot hold two recipes with the same fingerprint.
func RecipeFingerprint(title, ingredients, instructions string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + ingredients + "\x00" + instructions))
	return hex.EncodeToString(sum[:])
}
