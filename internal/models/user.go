package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID                   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Username             string    `gorm:"uniqueIndex;not null" json:"username"`
	Email                string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash         string    `gorm:"not null" json:"-"`
	Role                 string    `gorm:"default:'student'" json:"role"`
	SubscriptionTier     Tier      `gorm:"not null;default:'free'" json:"subscriptionTier"`
	StripeCustomerID     *string   `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID *string   `json:"stripeSubscriptionId,omitempty"`
	Level                int       `gorm:"not null;default:1" json:"level"`
	XP                   int       `gorm:"not null;default:0" json:"xp"`
	TokensUsedToday      int       `gorm:"not null;default:0" json:"tokensUsedToday"`
	LastTokenReset       time.Time `gorm:"not null" json:"lastTokenReset"`
	SelectedClass        string    `gorm:"not null;default:'11'" json:"selectedClass"`
	CharacterAvatar      string    `gorm:"default:'scholar'" json:"characterAvatar"`
	CreatedAt            time.Time `json:"createdAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.LastTokenReset.IsZero() {
		u.LastTokenReset = time.Now()
	}

	return nil
}

func (User) TableName() string {
	return "users"
}

// LevelForXP returns the level reached with the given experience points.
func LevelForXP(xp int) int {
	return xp/1000 + 1
}
