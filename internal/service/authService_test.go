package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aman-churiwal/tutor-gateway/internal/apperr"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := storage.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	store := memory.New()
	return NewAuthService(store, NewRedisDenylist(rdb), "test-secret", time.Hour), store
}

func register(t *testing.T, s *AuthService, username string) (*models.User, string) {
	t.Helper()

	user, token, err := s.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return user, token
}

func TestRegister_Defaults(t *testing.T) {
	s, _ := newAuthService(t)

	user, token := register(t, s, "asha")

	assert.NotEmpty(t, token)
	assert.Equal(t, models.TierFree, user.SubscriptionTier)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "11", user.SelectedClass)
	assert.Equal(t, "scholar", user.CharacterAvatar)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegister_Conflicts(t *testing.T) {
	s, _ := newAuthService(t)
	register(t, s, "asha")

	_, _, err := s.Register(context.Background(), RegisterRequest{
		Username: "asha", Email: "other@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, _, err = s.Register(context.Background(), RegisterRequest{
		Username: "ravi", Email: "asha@example.com", Password: "secret123",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegister_Validation(t *testing.T) {
	s, _ := newAuthService(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"short username", RegisterRequest{Username: "ab", Email: "ab@example.com", Password: "secret123"}},
		{"bad email", RegisterRequest{Username: "abc", Email: "not-an-email", Password: "secret123"}},
		{"short password", RegisterRequest{Username: "abc", Email: "abc@example.com", Password: "123"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	s, _ := newAuthService(t)
	registered, _ := register(t, s, "asha")

	user, token, err := s.Login(context.Background(), LoginRequest{Username: "asha", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := s.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, _ := newAuthService(t)
	register(t, s, "asha")

	_, _, err := s.Login(context.Background(), LoginRequest{Username: "asha", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = s.Login(context.Background(), LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestValidateToken_Rejects(t *testing.T) {
	s, _ := newAuthService(t)
	_, token := register(t, s, "asha")

	_, err := s.ValidateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	other := NewAuthService(memory.New(), nil, "other-secret", time.Hour)
	_, err = other.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	expired := NewAuthService(memory.New(), nil, "test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogout_RevokesToken(t *testing.T) {
	s, _ := newAuthService(t)
	_, token := register(t, s, "asha")
	ctx := context.Background()

	claims, err := s.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, claims))

	_, err = s.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestLogout_WithoutDenylist(t *testing.T) {
	s := NewAuthService(memory.New(), nil, "test-secret", time.Hour)
	assert.NoError(t, s.Logout(context.Background(), &Claims{ID: "abc", Expiry: time.Now().Add(time.Hour)}))
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newAuthService(t)
	user, _ := register(t, s, "asha")
	ctx := context.Background()

	class := "12"
	avatar := "explorer"
	updated, err := s.UpdateProfile(ctx, user.ID, ProfileUpdate{SelectedClass: &class, CharacterAvatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "12", updated.SelectedClass)
	assert.Equal(t, "explorer", updated.CharacterAvatar)

	bad := "9"
	_, err = s.UpdateProfile(ctx, user.ID, ProfileUpdate{SelectedClass: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	me, err := s.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "12", me.SelectedClass)
}
