package service

import (
	"context"
	"fmt"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

type EngagementStore interface {
	GetQuest(ctx context.Context, id uuid.UUID) (*models.Quest, error)
	ListActiveQuests(ctx context.Context) ([]models.Quest, error)
	CreateUserQuest(ctx context.Context, uq *models.UserQuest) error
	ListUserQuests(ctx context.Context, userID uuid.UUID) ([]models.UserQuest, error)
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error)
}

// A user's quest joined with the quest it tracks
type UserQuestDetail struct {
	models.UserQuest
	Quest *models.Quest `json:"quest"`
}

type UserAchievementDetail struct {
	models.UserAchievement
	Achievement *models.Achievement `json:"achievement"`
}

type EngagementService struct {
	repo EngagementStore
}

func NewEngagementService(repo EngagementStore) *EngagementService {
	return &EngagementService{repo: repo}
}

func (s *EngagementService) ListQuests(ctx context.Context) ([]models.Quest, error) {
	quests, err := s.repo.ListActiveQuests(ctx)
	if err != nil {
		return nil, err
	}
	if quests == nil {
		quests = []models.Quest{}
	}
	return quests, nil
}

func (s *EngagementService) ListUserQuests(ctx context.Context, userID uuid.UUID) ([]UserQuestDetail, error) {
	userQuests, err := s.repo.ListUserQuests(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]UserQuestDetail, 0, len(userQuests))
	for _, uq := range userQuests {
		quest, err := s.repo.GetQuest(ctx, uq.QuestID)
		if err != nil {
			return nil, err
		}
		details = append(details, UserQuestDetail{UserQuest: uq, Quest: quest})
	}

	return details, nil
}

// StartQuest enrolls the user in a quest. Starting one twice returns the
// existing enrollment.
func (s *EngagementService) StartQuest(ctx context.Context, userID, questID uuid.UUID) (*models.UserQuest, error) {
	quest, err := s.repo.GetQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if quest == nil || !quest.IsActive {
		return nil, fmt.Errorf("quest %w", apperr.ErrNotFound)
	}

	existing, err := s.repo.ListUserQuests(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if existing[i].QuestID == questID {
			return &existing[i], nil
		}
	}

	uq := &models.UserQuest{
		UserID:  userID,
		QuestID: questID,
	}
	if err := s.repo.CreateUserQuest(ctx, uq); err != nil {
		return nil, err
	}

	return uq, nil
}

func (s *EngagementService) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	return achievements, nil
}

func (s *EngagementService) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]UserAchievementDetail, error) {
	unlocked, err := s.repo.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	achievements, err := s.repo.ListAchievements(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*models.Achievement, len(achievements))
	for i := range achievements {
		byID[achievements[i].ID] = &achievements[i]
	}

	details := make([]UserAchievementDetail, 0, len(unlocked))
	for _, ua := range unlocked {
		details = append(details, UserAchievementDetail{UserAchievement: ua, Achievement: byID[ua.AchievementID]})
	}

	return details, nil
}
