package quiz

import (
	"context"
	"fmt"
	"strings"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/google/uuid"
)

// XPPerCorrectAnswer is awarded for every correctly answered quiz.
const XPPerCorrectAnswer = 10

type Store interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	AddXP(ctx context.Context, id uuid.UUID, xp int) (*models.User, error)
	GetQuiz(ctx context.Context, id uuid.UUID) (*models.Quiz, error)
	ListQuizzesByLesson(ctx context.Context, lessonID uuid.UUID) ([]models.Quiz, error)
	CreateQuizResult(ctx context.Context, result *models.QuizResult) error
	ListQuizResults(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.QuizResult, error)
}

// Explainer produces a short explanation for a wrong answer, or nil.
type Explainer interface {
	ExplainWrongAnswer(ctx context.Context, user *models.User, quiz *models.Quiz, answer string) *string
}

type Service struct {
	store     Store
	explainer Explainer
}

func NewService(store Store, explainer Explainer) *Service {
	return &Service{store: store, explainer: explainer}
}

// SelectQuizzes returns up to limit quizzes of the lesson, weak areas first.
func (s *Service) SelectQuizzes(ctx context.Context, userID, lessonID uuid.UUID, limit int) ([]models.Quiz, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := s.store.ListQuizResults(ctx, userID, &lessonID)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}

	quizzes, err := s.store.ListQuizzesByLesson(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	return Select(results, quizzes, limit), nil
}

type SubmitRequest struct {
	QuizID     uuid.UUID `json:"quizId"`
	LessonID   uuid.UUID `json:"lessonId"`
	UserAnswer string    `json:"userAnswer"`
	TimeSpent  int       `json:"timeSpent"`
}

func (r *SubmitRequest) Validate() error {
	r.UserAnswer = strings.TrimSpace(r.UserAnswer)

	switch {
	case r.QuizID == uuid.Nil:
		return apperr.Required("quizId")
	case r.LessonID == uuid.Nil:
		return apperr.Required("lessonId")
	case r.UserAnswer == "":
		return apperr.Required("userAnswer")
	case r.TimeSpent < 0:
		return &apperr.ValidationError{Field: "timeSpent", Reason: "must not be negative"}
	}
	return nil
}

// SubmitResult grades an answer, stores the result and awards XP. Wrong
// answers get an AI explanation when one can be produced.
func (s *Service) SubmitResult(ctx context.Context, userID uuid.UUID, req SubmitRequest) (*models.QuizResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	if user.SubscriptionTier == models.TierFree {
		return nil, fmt.Errorf("quizzes require a paid plan: %w", apperr.ErrForbidden)
	}

	quiz, err := s.store.GetQuiz(ctx, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if quiz == nil {
		return nil, fmt.Errorf("quiz %w", apperr.ErrNotFound)
	}
	if quiz.LessonID != req.LessonID {
		return nil, &apperr.ValidationError{Field: "lessonId", Reason: "does not match the quiz"}
	}

	result := &models.QuizResult{
		UserID:     user.ID,
		QuizID:     quiz.ID,
		LessonID:   quiz.LessonID,
		UserAnswer: req.UserAnswer,
		IsCorrect:  Grade(quiz, req.UserAnswer),
		TimeSpent:  req.TimeSpent,
	}

	if !result.IsCorrect && s.explainer != nil {
		result.AIExplanation = s.explainer.ExplainWrongAnswer(ctx, user, quiz, req.UserAnswer)
	}

	if err := s.store.CreateQuizResult(ctx, result); err != nil {
		return nil, fmt.Errorf("create quiz result: %w", err)
	}

	if result.IsCorrect {
		if _, err := s.store.AddXP(ctx, user.ID, XPPerCorrectAnswer); err != nil {
			return nil, fmt.Errorf("award xp: %w", err)
		}
	}

	return result, nil
}

func (s *Service) ListResults(ctx context.Context, userID uuid.UUID, lessonID *uuid.UUID) ([]models.QuizResult, error) {
	return s.store.ListQuizResults(ctx, userID, lessonID)
}

// Grade compares an answer with the quiz's correct answer, ignoring case and
// surrounding whitespace.
func Grade(quiz *models.Quiz, answer string) bool {
	return strings.EqualFold(strings.TrimSpace(quiz.CorrectAnswer), strings.TrimSpace(answer))
}
