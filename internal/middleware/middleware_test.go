package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/aman-churiwal/tutor-gateway/internal/service"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func issueToken(t *testing.T, auth *service.AuthService, store *memory.Store, tier models.Tier, role string) string {
	t.Helper()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	username := role + "-" + string(tier)
	require.NoError(t, store.CreateUser(ctx, &models.User{
		Username:         username,
		Email:            username + "@example.com",
		PasswordHash:     string(hash),
		Role:             role,
		SubscriptionTier: tier,
	}))

	_, token, err := auth.Login(ctx, service.LoginRequest{Username: username, Password: "secret123"})
	require.NoError(t, err)
	return token
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	store := memory.New()
	auth := service.NewAuthService(store, nil, "secret", time.Hour)
	token := issueToken(t, auth, store, models.TierFree, models.RoleStudent)

	r := gin.New()
	r.GET("/me", RequireAuth(auth), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", "not-a-jwt").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/me", token).Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	store := memory.New()
	auth := service.NewAuthService(store, nil, "secret", time.Hour)
	studentToken := issueToken(t, auth, store, models.TierFree, models.RoleStudent)
	adminToken := issueToken(t, auth, store, models.TierFree, models.RoleAdmin)

	r := gin.New()
	r.GET("/admin", RequireAuth(auth), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", studentToken).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", adminToken).Code)
}

func TestRateLimitWithTier(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := storage.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { rdb.Close() })

	store := memory.New()
	auth := service.NewAuthService(store, nil, "secret", time.Hour)
	token := issueToken(t, auth, store, models.TierBasic, models.RoleStudent)

	cfg := &config.Config{RateLimitTiers: []config.RateLimiterTier{
		{Name: "free", RequestsPerMinute: 1, Algorithm: "fixed_window"},
		{Name: "basic", RequestsPerMinute: 2, Algorithm: "fixed_window"},
	}}

	r := gin.New()
	r.GET("/limited", RequireAuth(auth), RateLimitWithTier(rdb, cfg, store), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := do(r, http.MethodGet, "/limited", token)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "basic", first.Header().Get("X-RateLimit-Tier"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/limited", token).Code)

	blocked := do(r, http.MethodGet, "/limited", token)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))
}

func TestRateLimitWithTier_NoRedis(t *testing.T) {
	r := gin.New()
	r.GET("/open", RateLimitWithTier(nil, &config.Config{}, memory.New()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/open", "").Code)
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	r.GET("/ok", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	w := do(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
