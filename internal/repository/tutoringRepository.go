package repository

import (
	"context"
	"fmt"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Persists doubts and derivations
type TutoringRepository struct {
	db *storage.Postgres
}

func NewTutoringRepository(db *storage.Postgres) *TutoringRepository {
	return &TutoringRepository{db: db}
}

func (r *TutoringRepository) CreateDoubt(ctx context.Context, doubt *models.Doubt) error {
	return r.db.DB.WithContext(ctx).Create(doubt).Error
}

func (r *TutoringRepository) ResolveDoubt(ctx context.Context, id uuid.UUID, answer string, tokensUsed int) (*models.Doubt, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.Doubt{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ai_response": answer,
			"is_resolved": true,
			"tokens_used": tokensUsed,
		})

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("doubt %w", apperr.ErrNotFound)
	}

	return r.GetDoubt(ctx, id)
}

func (r *TutoringRepository) GetDoubt(ctx context.Context, id uuid.UUID) (*models.Doubt, error) {
	var doubt models.Doubt
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&doubt).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doubt, nil
}

// Retrieves a user's doubts, newest first
func (r *TutoringRepository) ListDoubts(ctx context.Context, userID uuid.UUID) ([]models.Doubt, error) {
	var doubts []models.Doubt
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&doubts).Error

	return doubts, err
}

func (r *TutoringRepository) CreateDerivation(ctx context.Context, derivation *models.Derivation) error {
	return r.db.DB.WithContext(ctx).Create(derivation).Error
}

func (r *TutoringRepository) ResolveDerivation(ctx context.Context, id uuid.UUID, steps string, tokensUsed int) (*models.Derivation, error) {
	result := r.db.DB.WithContext(ctx).
		Model(&models.Derivation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"derivation_steps": steps,
			"tokens_used":      tokensUsed,
		})

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("derivation %w", apperr.ErrNotFound)
	}

	return r.GetDerivation(ctx, id)
}

func (r *TutoringRepository) GetDerivation(ctx context.Context, id uuid.UUID) (*models.Derivation, error) {
	var derivation models.Derivation
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&derivation).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &derivation, nil
}

// Retrieves a user's derivations, newest first
func (r *TutoringRepository) ListDerivations(ctx context.Context, userID uuid.UUID) ([]models.Derivation, error) {
	var derivations []models.Derivation
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&derivations).Error

	return derivations, err
}
