// Package memory is an in-process implementation of every repository the
// services depend on. It backs tests and the "memory" storage driver.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/repository"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	users            map[uuid.UUID]*models.User
	doubts           map[uuid.UUID]*models.Doubt
	derivations      map[uuid.UUID]*models.Derivation
	lessons          []*models.Lesson
	quizzes          []*models.Quiz
	quizResults      []*models.QuizResult
	progress         []*models.UserProgress
	quests           []*models.Quest
	userQuests       []*models.UserQuest
	achievements     []*models.Achievement
	userAchievements []*models.UserAchievement
	usageEvents      []models.UsageEvent
	nextUsageID      uint
}

var _ repository.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		users:       make(map[uuid.UUID]*models.User),
		doubts:      make(map[uuid.UUID]*models.Doubt),
		derivations: make(map[uuid.UUID]*models.Derivation),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("user %w", apperr.ErrConflict)
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RoleStudent
	}
	if user.SubscriptionTier == "" {
		user.SubscriptionTier = models.TierFree
	}
	if user.Level == 0 {
		user.Level = 1
	}
	if user.SelectedClass == "" {
		user.SelectedClass = "11"
	}
	if user.CharacterAvatar == "" {
		user.CharacterAvatar = "scholar"
	}
	now := time.Now()
	if user.LastTokenReset.IsZero() {
		user.LastTokenReset = now
	}
	user.CreatedAt = now

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Username == username })
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(func(u *models.User) bool { return u.Email == email })
}

func (s *Store) findUser(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, selectedClass, avatar *string) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) {
		if selectedClass != nil {
			u.SelectedClass = *selectedClass
		}
		if avatar != nil {
			u.CharacterAvatar = *avatar
		}
	})
}

func (s *Store) AddXP(ctx context.Context, id uuid.UUID, xp int) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) {
		u.XP += xp
		u.Level = models.LevelForXP(u.XP)
	})
}

func (s *Store) SetTier(ctx context.Context, id uuid.UUID, tier models.Tier, customerID, subscriptionID string) (*models.User, error) {
	return s.mutateUser(id, func(u *models.User) {
		u.SubscriptionTier = tier
		if customerID != "" {
			u.StripeCustomerID = &customerID
		}
		if subscriptionID != "" {
			u.StripeSubscriptionID = &subscriptionID
		}
	})
}

func (s *Store) UpdateUserLedger(ctx context.Context, id uuid.UUID, tokensUsed int, lastReset time.Time) error {
	_, err := s.mutateUser(id, func(u *models.User) {
		u.TokensUsedToday = tokensUsed
		u.LastTokenReset = lastReset
	})
	return err
}

func (s *Store) AddTokensUsed(ctx context.Context, id uuid.UUID, tokens int) error {
	_, err := s.mutateUser(id, func(u *models.User) {
		u.TokensUsedToday += tokens
	})
	return err
}

func (s *Store) mutateUser(id uuid.UUID, fn func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	fn(u)
	out := *u
	return &out, nil
}
