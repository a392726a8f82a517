package service

import (
	"context"
	"testing"

	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *memory.Store, tier models.Tier) *models.User {
	t.Helper()

	user := &models.User{
		Username:         "user-" + uuid.NewString()[:8],
		Email:            uuid.NewString() + "@example.com",
		SubscriptionTier: tier,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedLesson(t *testing.T, store *memory.Store, classLevel, subject string, order int) *models.Lesson {
	t.Helper()

	lesson := &models.Lesson{
		ClassLevel: classLevel,
		Subject:    subject,
		Chapter:    "Kinematics",
		Topic:      "Motion",
		Title:      "Lesson",
		Order:      order,
	}
	require.NoError(t, store.CreateLesson(context.Background(), lesson))
	return lesson
}

func TestListLessons(t *testing.T) {
	store := memory.New()
	s := NewLearningService(store)
	ctx := context.Background()

	seedLesson(t, store, "11", "physics", 2)
	seedLesson(t, store, "11", "physics", 1)
	seedLesson(t, store, "11", "chemistry", 1)
	seedLesson(t, store, "12", "physics", 1)

	_, err := s.ListLessons(ctx, "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	all, err := s.ListLessons(ctx, "11", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	physics, err := s.ListLessons(ctx, "11", "physics")
	require.NoError(t, err)
	require.Len(t, physics, 2)
	assert.Equal(t, 1, physics[0].Order)

	none, err := s.ListLessons(ctx, "10", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetLesson_NotFound(t *testing.T) {
	s := NewLearningService(memory.New())

	_, err := s.GetLesson(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStartLesson(t *testing.T) {
	store := memory.New()
	s := NewLearningService(store)
	ctx := context.Background()
	lesson := seedLesson(t, store, "11", "physics", 1)

	free := seedUser(t, store, models.TierFree)
	_, err := s.StartLesson(ctx, free.ID, lesson.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	basic := seedUser(t, store, models.TierBasic)
	_, err = s.StartLesson(ctx, basic.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	first, err := s.StartLesson(ctx, basic.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, lesson.ID, first.LessonID)
	assert.False(t, first.Completed)

	again, err := s.StartLesson(ctx, basic.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	all, err := s.ListProgress(ctx, basic.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateProgress_GrantsXPOnce(t *testing.T) {
	store := memory.New()
	s := NewLearningService(store)
	ctx := context.Background()
	lesson := seedLesson(t, store, "11", "physics", 1)
	user := seedUser(t, store, models.TierPro)

	progress, err := s.StartLesson(ctx, user.ID, lesson.ID)
	require.NoError(t, err)

	done := true
	score := 80
	updated, err := s.UpdateProgress(ctx, user.ID, progress.ID, models.ProgressUpdate{Completed: &done, Score: &score})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	assert.NotNil(t, updated.CompletedAt)

	_, err = s.UpdateProgress(ctx, user.ID, progress.ID, models.ProgressUpdate{Completed: &done})
	require.NoError(t, err)

	reloaded, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, XPPerLessonCompleted, reloaded.XP)
}

func TestUpdateProgress_Ownership(t *testing.T) {
	store := memory.New()
	s := NewLearningService(store)
	ctx := context.Background()
	lesson := seedLesson(t, store, "11", "physics", 1)
	owner := seedUser(t, store, models.TierPro)
	other := seedUser(t, store, models.TierPro)

	progress, err := s.StartLesson(ctx, owner.ID, lesson.ID)
	require.NoError(t, err)

	done := true
	_, err = s.UpdateProgress(ctx, other.ID, progress.ID, models.ProgressUpdate{Completed: &done})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	bad := 101
	_, err = s.UpdateProgress(ctx, owner.ID, progress.ID, models.ProgressUpdate{Score: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
