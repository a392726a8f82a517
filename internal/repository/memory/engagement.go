package memory

import (
	"context"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateQuest(ctx context.Context, quest *models.Quest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quest.ID == uuid.Nil {
		quest.ID = uuid.New()
	}
	stored := *quest
	s.quests = append(s.quests, &stored)
	return nil
}

func (s *Store) GetQuest(ctx context.Context, id uuid.UUID) (*models.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quests {
		if q.ID == id {
			out := *q
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListActiveQuests(ctx context.Context) ([]models.Quest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quests := make([]models.Quest, 0)
	for _, q := range s.quests {
		if q.IsActive {
			quests = append(quests, *q)
		}
	}
	return quests, nil
}

func (s *Store) CreateUserQuest(ctx context.Context, uq *models.UserQuest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uq.ID == uuid.Nil {
		uq.ID = uuid.New()
	}
	if uq.StartedAt.IsZero() {
		uq.StartedAt = time.Now()
	}
	stored := *uq
	s.userQuests = append(s.userQuests, &stored)
	return nil
}

func (s *Store) ListUserQuests(ctx context.Context, userID uuid.UUID) ([]models.UserQuest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quests := make([]models.UserQuest, 0)
	for _, uq := range s.userQuests {
		if uq.UserID == userID {
			quests = append(quests, *uq)
		}
	}
	return quests, nil
}

func (s *Store) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	stored := *achievement
	s.achievements = append(s.achievements, &stored)
	return nil
}

func (s *Store) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	achievements := make([]models.Achievement, 0, len(s.achievements))
	for _, a := range s.achievements {
		achievements = append(achievements, *a)
	}
	return achievements, nil
}

func (s *Store) CreateUserAchievement(ctx context.Context, ua *models.UserAchievement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	if ua.UnlockedAt.IsZero() {
		ua.UnlockedAt = time.Now()
	}
	stored := *ua
	s.userAchievements = append(s.userAchievements, &stored)
	return nil
}

func (s *Store) ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	achievements := make([]models.UserAchievement, 0)
	for _, ua := range s.userAchievements {
		if ua.UserID == userID {
			achievements = append(achievements, *ua)
		}
	}
	return achievements, nil
}
