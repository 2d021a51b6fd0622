package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"size:254;uniqueIndex;not null" json:"email"`
	FullName     string         `gorm:"size:255" json:"full_name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Profile      *UserProfile   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserProfile holds the preferences used to personalize suggestions
type UserProfile struct {
	ID                uuid.UUID         `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID            uuid.UUID         `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	DietaryPreference DietaryPreference `gorm:"size:20;not null;default:'omnivore'" json:"dietary_preference"`
	Allergies         string            `gorm:"type:text" json:"allergies"`
	Budget            *float64          `gorm:"type:numeric(10,2)" json:"budget"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (p *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.DietaryPreference == "" {
		p.DietaryPreference = DietOmnivore
	}
	return nil
}
