package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

// XP granted the first time a lesson is marked completed
const XPPerLessonCompleted = 50

type LearningStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AddXP(ctx context.Context, id uuid.UUID, xp int) (*models.User, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error)
	ListLessons(ctx context.Context, classLevel, subject string) ([]models.Lesson, error)
	CreateProgress(ctx context.Context, progress *models.UserProgress) error
	ListProgress(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.UserProgress, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, update models.ProgressUpdate) (*models.UserProgress, error)
}

type LearningService struct {
	repo LearningStore
}

func NewLearningService(repo LearningStore) *LearningService {
	return &LearningService{repo: repo}
}

func (s *LearningService) ListLessons(ctx context.Context, classLevel, subject string) ([]models.Lesson, error) {
	classLevel = strings.TrimSpace(classLevel)
	if classLevel == "" {
		return nil, apperr.Required("classLevel")
	}

	lessons, err := s.repo.ListLessons(ctx, classLevel, strings.TrimSpace(subject))
	if err != nil {
		return nil, err
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return lessons, nil
}

func (s *LearningService) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	lesson, err := s.repo.GetLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, fmt.Errorf("lesson %w", apperr.ErrNotFound)
	}
	return lesson, nil
}

// StartLesson opens a progress record for the lesson, or returns the one
// the user already has. Lessons are a paid feature.
func (s *LearningService) StartLesson(ctx context.Context, userID, lessonID uuid.UUID) (*models.UserProgress, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	if user.SubscriptionTier == models.TierFree {
		return nil, fmt.Errorf("upgrade to access lessons: %w", apperr.ErrForbidden)
	}

	if _, err := s.GetLesson(ctx, lessonID); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListProgress(ctx, userID, &lessonID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	progress := &models.UserProgress{
		UserID:   userID,
		LessonID: lessonID,
	}
	if err := s.repo.CreateProgress(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

func (s *LearningService) ListProgress(ctx context.Context, userID uuid.UUID) ([]models.UserProgress, error) {
	progress, err := s.repo.ListProgress(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []models.UserProgress{}
	}
	return progress, nil
}

// UpdateProgress applies a student's update to their own progress record.
// Completing a lesson that was not already complete grants XP.
func (s *LearningService) UpdateProgress(ctx context.Context, userID, progressID uuid.UUID, update models.ProgressUpdate) (*models.UserProgress, error) {
	if update.Score != nil && (*update.Score < 0 || *update.Score > 100) {
		return nil, &apperr.ValidationError{Field: "score", Reason: "must be between 0 and 100"}
	}
	if update.TimeSpent != nil && *update.TimeSpent < 0 {
		return nil, &apperr.ValidationError{Field: "timeSpent", Reason: "must not be negative"}
	}

	all, err := s.repo.ListProgress(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	var current *models.UserProgress
	for i := range all {
		if all[i].ID == progressID {
			current = &all[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("progress %w", apperr.ErrNotFound)
	}

	progress, err := s.repo.UpdateProgress(ctx, progressID, update)
	if err != nil {
		return nil, err
	}

	if update.Completed != nil && *update.Completed && !current.Completed {
		if _, err := s.repo.AddXP(ctx, userID, XPPerLessonCompleted); err != nil {
			log.Printf("[learning] failed to grant xp to user %s: %v", userID, err)
		}
	}

	return progress, nil
}
