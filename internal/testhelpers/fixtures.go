package testhelpers

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smartbites/backend/internal/models"
)

// CreateTestUser inserts a user with a default profile and returns the
// plain-text password alongside it.
func CreateTestUser(t *testing.T, db *gorm.DB) (*models.User, string) {
	t.Helper()

	password := gofakeit.Password(true, true, true, false, false, 12)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:        gofakeit.Email(),
		FullName:     gofakeit.Name(),
		PasswordHash: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	if err := db.Create(&models.UserProfile{UserID: user.ID}).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return user, password
}

// FakeRecipeFields returns plausible values for a saved recipe
func FakeRecipeFields() (title, ingredients, instructions string) {
	return gofakeit.Dessert(),
		gofakeit.Sentence(8),
		gofakeit.Paragraph(1, 3, 12, " ")
}
