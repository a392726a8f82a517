package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *storage.Postgres
}

func NewUserRepository(db *storage.Postgres) *UserRepository {
	return &UserRepository{db: db}
}

// Inserts a new user into the database
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.DB.WithContext(ctx).Create(user).Error
}

// Retrieves user by id
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// Retrieves user by username
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// Retrieves user by email
func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.DB.WithContext(ctx).
		Where(query, arg).
		First(&user).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, selectedClass, avatar *string) (*models.User, error) {
	updates := make(map[string]interface{})
	if selectedClass != nil {
		updates["selected_class"] = *selectedClass
	}
	if avatar != nil {
		updates["character_avatar"] = *avatar
	}

	return r.update(ctx, id, updates)
}

// Adds experience points and recomputes the level in one statement
func (r *UserRepository) AddXP(ctx context.Context, id uuid.UUID, xp int) (*models.User, error) {
	return r.update(ctx, id, map[string]interface{}{
		"xp":    gorm.Expr("xp + ?", xp),
		"level": gorm.Expr("(xp + ?) / 1000 + 1", xp),
	})
}

func (r *UserRepository) SetTier(ctx context.Context, id uuid.UUID, tier models.Tier, customerID, subscriptionID string) (*models.User, error) {
	updates := map[string]interface{}{
		"subscription_tier": tier,
	}
	if customerID != "" {
		updates["stripe_customer_id"] = customerID
	}
	if subscriptionID != "" {
		updates["stripe_subscription_id"] = subscriptionID
	}

	return r.update(ctx, id, updates)
}

func (r *UserRepository) UpdateUserLedger(ctx context.Context, id uuid.UUID, tokensUsed int, lastReset time.Time) error {
	_, err := r.update(ctx, id, map[string]interface{}{
		"tokens_used_today": tokensUsed,
		"last_token_reset":  lastReset,
	})
	return err
}

// Atomically adds consumed tokens to today's counter
func (r *UserRepository) AddTokensUsed(ctx context.Context, id uuid.UUID, tokens int) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("tokens_used_today", gorm.Expr("tokens_used_today + ?", tokens))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user %w", apperr.ErrNotFound)
	}

	return nil
}

func (r *UserRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	if len(updates) > 0 {
		result := r.db.DB.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates)

		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
		}
	}

	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}

	return user, nil
}
