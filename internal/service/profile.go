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

// ProfileService handles user profile operations
type ProfileService struct {
	db *gorm.DB
}

// Ensure ProfileService implements IProfileService
var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfileRecord loads the stored profile, creating the default one for
// accounts that predate profiles.
func (s *ProfileService) GetProfileRecord(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.WithContext(ctx).
		Where(models.UserProfile{UserID: userID}).
		Attrs(models.UserProfile{DietaryPreference: models.DietOmnivore}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

// GetProfile returns the profile merged with the account fields
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*types.ProfileResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	profile, err := s.GetProfileRecord(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(&user, profile), nil
}

// UpdateProfile applies the non-nil fields of req
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*types.ProfileResponse, error) {
	if req.DietaryPreference != nil && !models.DietaryPreference(*req.DietaryPreference).Valid() {
		return nil, ErrInvalidDiet
	}

	var user models.User
	var profile *models.UserProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		userUpdates := map[string]interface{}{}
		if req.FullName != nil {
			userUpdates["full_name"] = strings.TrimSpace(*req.FullName)
		}
		if req.Email != nil {
			email := normalizeEmail(*req.Email)
			if email != user.Email {
				var count int64
				if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, userID).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					return ErrEmailTaken
				}
			}
			userUpdates["email"] = email
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&user).Updates(userUpdates).Error; err != nil {
				return err
			}
			if err := tx.First(&user, "id = ?", userID).Error; err != nil {
				return err
			}
		}

		var p models.UserProfile
		if err := tx.Where(models.UserProfile{UserID: userID}).
			Attrs(models.UserProfile{DietaryPreference: models.DietOmnivore}).
			FirstOrCreate(&p).Error; err != nil {
			return err
		}

		profileUpdates := map[string]interface{}{}
		if req.DietaryPreference != nil {
			profileUpdates["dietary_preference"] = models.DietaryPreference(*req.DietaryPreference)
		}
		if req.Allergies != nil {
			profileUpdates["allergies"] = strings.TrimSpace(*req.Allergies)
		}
		if req.ClearBudget {
			profileUpdates["budget"] = nil
		} else if req.Budget != nil {
			profileUpdates["budget"] = *req.Budget
		}
		if len(profileUpdates) > 0 {
			if err := tx.Model(&p).Updates(profileUpdates).Error; err != nil {
				return err
			}
			if err := tx.First(&p, "id = ?", p.ID).Error; err != nil {
				return err
			}
		}
		profile = &p
		return nil
	})
	if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrEmailTaken) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return toProfileResponse(&user, profile), nil
}

func toProfileResponse(user *models.User, profile *models.UserProfile) *types.ProfileResponse {
	return &types.ProfileResponse{
		FullName:          user.FullName,
		Email:             user.Email,
		DietaryPreference: profile.DietaryPreference,
		Allergies:         profile.Allergies,
		Budget:            profile.Budget,
	}
}
