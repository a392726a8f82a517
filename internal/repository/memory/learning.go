package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lesson.ID == uuid.Nil {
		lesson.ID = uuid.New()
	}
	stored := *lesson
	s.lessons = append(s.lessons, &stored)
	return nil
}

func (s *Store) CountLessons(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.lessons)), nil
}

func (s *Store) GetLesson(ctx context.Context, id uuid.UUID) (*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.lessons {
		if l.ID == id {
			out := *l
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) ListLessons(ctx context.Context, classLevel, subject string) ([]models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lessons := make([]models.Lesson, 0)
	for _, l := range s.lessons {
		if l.ClassLevel != classLevel {
			continue
		}
		if subject != "" && l.Subject != subject {
			continue
		}
		lessons = append(lessons, *l)
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
	return lessons, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}
	stored := *quiz
	s.quizzes = append(s.quizzes, &stored)
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quizzes {
		if q.ID == id {
			out := *q
			return &out, nil
		}
	}
	return nil, nil
}

// ListQuizzesByLesson returns quizzes by position, falling back to insertion order.
func (s *Store) ListQuizzesByLesson(ctx context.Context, lessonID uuid.UUID) ([]models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quizzes := make([]models.Quiz, 0)
	for _, q := range s.quizzes {
		if q.LessonID == lessonID {
			quizzes = append(quizzes, *q)
		}
	}
	sort.SliceStable(quizzes, func(i, j int) bool {
		return quizzes[i].Position < quizzes[j].Position
	})
	return quizzes, nil
}

func (s *Store) CreateQuizResult(ctx context.Context, result *models.QuizResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	result.CreatedAt = time.Now()
	stored := *result
	s.quizResults = append(s.quizResults, &stored)
	return nil
}

func (s *Store) ListQuizResults(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]models.QuizResult, 0)
	for _, r := range s.quizResults {
		if r.UserID != userID {
			continue
		}
		if lessonID != nil && r.LessonID != *lessonID {
			continue
		}
		results = append(results, *r)
	}
	return results, nil
}

func (s *Store) CreateProgress(ctx context.Context, progress *models.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if progress.ID == uuid.Nil {
		progress.ID = uuid.New()
	}
	progress.LastAccessed = time.Now()
	stored := *progress
	s.progress = append(s.progress, &stored)
	return nil
}

func (s *Store) ListProgress(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.UserProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	progress := make([]models.UserProgress, 0)
	for _, p := range s.progress {
		if p.UserID != userID {
			continue
		}
		if lessonID != nil && p.LessonID != *lessonID {
			continue
		}
		progress = append(progress, *p)
	}
	return progress, nil
}

func (s *Store) UpdateProgress(ctx context.Context, id uuid.UUID, update models.ProgressUpdate) (*models.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.progress {
		if p.ID != id {
			continue
		}
		if update.Completed != nil {
			p.Completed = *update.Completed
			if *update.Completed && p.CompletedAt == nil {
				now := time.Now()
				p.CompletedAt = &now
			}
		}
		if update.Score != nil {
			p.Score = update.Score
		}
		if update.TimeSpent != nil {
			p.TimeSpent = *update.TimeSpent
		}
		if update.WeakAreas != nil {
			p.WeakAreas = update.WeakAreas
		}
		p.LastAccessed = time.Now()

		out := *p
		return &out, nil
	}

	return nil, fmt.Errorf("progress %w", apperr.ErrNotFound)
}
