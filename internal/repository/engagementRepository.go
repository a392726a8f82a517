package repository

import (
	"context"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Persists quests and achievements along with each user's standing in them
type EngagementRepository struct {
	db *storage.Postgres
}

func NewEngagementRepository(db *storage.Postgres) *EngagementRepository {
	return &EngagementRepository{db: db}
}

func (r *EngagementRepository) CreateQuest(ctx context.Context, quest *models.Quest) error {
	return r.db.DB.WithContext(ctx).Create(quest).Error
}

func (r *EngagementRepository) GetQuest(ctx context.Context, id uuid.UUID) (*models.Quest, error) {
	var quest models.Quest
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&quest).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &quest, nil
}

func (r *EngagementRepository) ListActiveQuests(ctx context.Context) ([]models.Quest, error) {
	var quests []models.Quest
	err := r.db.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&quests).Error

	return quests, err
}

func (r *EngagementRepository) CreateUserQuest(ctx context.Context, uq *models.UserQuest) error {
	return r.db.DB.WithContext(ctx).Create(uq).Error
}

func (r *EngagementRepository) ListUserQuests(ctx context.Context, userID uuid.UUID) ([]models.UserQuest, error) {
	var quests []models.UserQuest
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&quests).Error

	return quests, err
}

func (r *EngagementRepository) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	return r.db.DB.WithContext(ctx).Create(achievement).Error
}

func (r *EngagementRepository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.DB.WithContext(ctx).Find(&achievements).Error

	return achievements, err
}

func (r *EngagementRepository) CreateUserAchievement(ctx context.Context, ua *models.UserAchievement) error {
	return r.db.DB.WithContext(ctx).Create(ua).Error
}

func (r *EngagementRepository) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	var achievements []models.UserAchievement
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at DESC").
		Find(&achievements).Error

	return achievements, err
}
