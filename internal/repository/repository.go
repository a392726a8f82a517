package repository

import (
	"context"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

// Repository is the full persistence surface of the service. Both the
// Postgres Store and the in-memory store implement it.
type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, selectedClass, avatar *string) (*models.User, error)
	AddXP(ctx context.Context, id uuid.UUID, xp int) (*models.User, error)
	SetTier(ctx context.Context, id uuid.UUID, tier models.Tier, customerID, subscriptionID string) (*models.User, error)
	UpdateUserLedger(ctx context.Context, id uuid.UUID, tokensUsed int, lastReset time.Time) error
	AddTokensUsed(ctx context.Context, id uuid.UUID, tokens int) error

	CreateDoubt(ctx context.Context, doubt *models.Doubt) error
	ResolveDoubt(ctx context.Context, id uuid.UUID, answer string, tokensUsed int) (*models.Doubt, error)
	GetDoubt(ctx context.Context, id uuid.UUID) (*models.Doubt, error)
	ListDoubts(ctx context.Context, userID uuid.UUID) ([]models.Doubt, error)
	CreateDerivation(ctx context.Context, derivation *models.Derivation) error
	ResolveDerivation(ctx context.Context, id uuid.UUID, steps string, tokensUsed int) (*models.Derivation, error)
	GetDerivation(ctx context.Context, id uuid.UUID) (*models.Derivation, error)
	ListDerivations(ctx context.Context, userID uuid.UUID) ([]models.Derivation, error)

	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	CountLessons(ctx context.Context) (int64, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	ListLessons(ctx context.Context, classLevel, subject string) ([]models.Lesson, error)
	CreateQuiz(ctx context.Context, quiz *models.Quiz) error
	GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListQuizzesByLesson(ctx context.Context, lessonID uuid.UUID) ([]models.Quiz, error)
	CreateQuizResult(ctx context.Context, result *models.QuizResult) error
	ListQuizResults(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.QuizResult, error)
	CreateProgress(ctx context.Context, progress *models.UserProgress) error
	ListProgress(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.UserProgress, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, update models.ProgressUpdate) (*models.UserProgress, error)

	CreateQuest(ctx context.Context, quest *models.Quest) error
	GetQuest(ctx context.Context, id uuid.UUID) (*models.Quest, error)
	ListActiveQuests(ctx context.Context) ([]models.Quest, error)
	CreateUserQuest(ctx context.Context, uq *models.UserQuest) error
	ListUserQuests(ctx context.Context, userID uuid.UUID) ([]models.UserQuest, error)
	CreateAchievement(ctx context.Context, achievement *models.Achievement) error
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	CreateUserAchievement(ctx context.Context, ua *models.UserAchievement) error
	ListUserAchievements(ctx context.Context, userID uuid.UUID) ([]models.UserAchievement, error)

	CreateUsageEvents(ctx context.Context, events []models.UsageEvent) error
	CountUsage(ctx context.Context, from, to time.Time) (int64, error)
	SumUsageTokens(ctx context.Context, from, to time.Time) (int64, error)
	AverageUsageLatency(ctx context.Context, from, to time.Time) (float64, error)
	UsageBreakdown(ctx context.Context, column string, from, to time.Time) ([]models.UsageBreakdown, error)
	HourlyUsage(ctx context.Context, from, to time.Time) ([]models.UsageBucket, error)
	UserUsage(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, int64, error)
	DeleteUsageBefore(ctx context.Context, before time.Time) (int64, error)
}

var _ Repository = (*Store)(nil)
