package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Persists lessons, quizzes, quiz results and lesson progress
type LearningRepository struct {
	db *storage.Postgres
}

func NewLearningRepository(db *storage.Postgres) *LearningRepository {
	return &LearningRepository{db: db}
}

func (r *LearningRepository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	return r.db.DB.WithContext(ctx).Create(lesson).Error
}

func (r *LearningRepository) CountLessons(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.Lesson{}).
		Count(&count).Error

	return count, err
}

func (r *LearningRepository) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&lesson).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &lesson, nil
}

// Retrieves lessons for a class, optionally filtered by subject
func (r *LearningRepository) ListLessons(ctx context.Context, classLevel, subject string) ([]models.Lesson, error) {
	var lessons []models.Lesson
	query := r.db.DB.WithContext(ctx).
		Where("class_level = ?", classLevel)

	if subject != "" {
		query = query.Where("subject = ?", subject)
	}

	err := query.Order(`"order" ASC`).Find(&lessons).Error
	return lessons, err
}

func (r *LearningRepository) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return r.db.DB.WithContext(ctx).Create(quiz).Error
}

func (r *LearningRepository) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", id).
		First(&quiz).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &quiz, nil
}

// Retrieves a lesson's quizzes in lesson order
func (r *LearningRepository) ListQuizzesByLesson(ctx context.Context, lessonID uuid.UUID) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.DB.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("position ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&quizzes).Error

	return quizzes, err
}

func (r *LearningRepository) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	return r.db.DB.WithContext(ctx).Create(result).Error
}

func (r *LearningRepository) ListQuizResults(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.QuizResult, error) {
	var results []models.QuizResult
	query := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID)

	if lessonID != nil {
		query = query.Where("lesson_id = ?", *lessonID)
	}

	err := query.Order("created_at ASC").Find(&results).Error
	return results, err
}

func (r *LearningRepository) CreateProgress(ctx context.Context, progress *models.UserProgress) error {
	return r.db.DB.WithContext(ctx).Create(progress).Error
}

func (r *LearningRepository) ListProgress(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	query := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID)

	if lessonID != nil {
		query = query.Where("lesson_id = ?", *lessonID)
	}

	err := query.Order("last_accessed DESC").Find(&progress).Error
	return progress, err
}

func (r *LearningRepository) UpdateProgress(ctx context.Context, id uuid.UUID, update models.ProgressUpdate) (*models.UserProgress, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"last_accessed": now,
	}
	if update.Completed != nil {
		updates["completed"] = *update.Completed
		if *update.Completed {
			updates["completed_at"] = gorm.Expr("COALESCE(completed_at, ?)", now)
		}
	}
	if update.Score != nil {
		updates["score"] = *update.Score
	}
	if update.TimeSpent != nil {
		updates["time_spent"] = *update.TimeSpent
	}
	if update.WeakAreas != nil {
		updates["weak_areas"] = datatypes.JSONSlice[string](update.WeakAreas)
	}

	result := r.db.DB.WithContext(ctx).
		Model(&models.UserProgress{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("progress %w", apperr.ErrNotFound)
	}

	var progress models.UserProgress
	if err := r.db.DB.WithContext(ctx).Where("id = ?", id).First(&progress).Error; err != nil {
		return nil, err
	}

	return &progress, nil
}
