package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/gateway"
	"github.com/aman-churiwal/tutor-gateway/internal/healthcheck"
	"github.com/aman-churiwal/tutor-gateway/internal/middleware"
	"github.com/aman-churiwal/tutor-gateway/internal/models"
	"github.com/aman-churiwal/tutor-gateway/internal/provider"
	"github.com/aman-churiwal/tutor-gateway/internal/quiz"
	"github.com/aman-churiwal/tutor-gateway/internal/repository/memory"
	"github.com/aman-churiwal/tutor-gateway/internal/service"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubProvider struct {
	text   string
	tokens int
}

func (p *stubProvider) Complete(ctx context.Context, req provider.Request) (*provider.Completion, error) {
	return &provider.Completion{Text: p.text, TokensConsumed: p.tokens}, nil
}

type testAPI struct {
	router *gin.Engine
	store  *memory.Store
}

func newTestAPI(t *testing.T, p provider.Provider) *testAPI {
	t.Helper()

	store := memory.New()
	auth := service.NewAuthService(store, nil, "test-secret", time.Hour)
	gw := gateway.New(store, p, tier.NewGate(store), nil)
	checker := healthcheck.NewChecker(&healthcheck.Config{Probes: []healthcheck.Probe{
		{Name: "handler-test-store", Critical: true, Check: store.Ping},
	}})

	authHandler := NewAuthHandler(auth)
	tutoring := NewTutoringHandler(gw, store)
	learning := NewLearningHandler(service.NewLearningService(store))
	quizzes := NewQuizHandler(quiz.NewService(store, gw))
	analytics := NewAnalyticsHandler(service.NewAnalyticsService(store))
	system := NewSystemHandler(checker, nil)

	r := gin.New()
	r.GET("/health", system.Health)

	api := r.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/lessons", learning.ListLessons)

	protected := api.Group("", middleware.RequireAuth(auth))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/doubts", tutoring.CreateDoubt)
	protected.GET("/doubts", tutoring.ListDoubts)
	protected.POST("/quiz-results", quizzes.SubmitResult)

	admin := r.Group("/admin", middleware.RequireAuth(auth), middleware.RequireAdmin())
	admin.GET("/usage", analytics.GetSummary)

	return &testAPI{router: r, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

// signup registers a user, moves them to tier and returns their id and token.
func (a *testAPI) signup(t *testing.T, username string, tier models.Tier) (uuid.UUID, string) {
	t.Helper()

	w, body := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := body["user"].(map[string]interface{})
	id := uuid.MustParse(user["id"].(string))
	_, hasPassword := user["PasswordHash"]
	assert.False(t, hasPassword)

	if tier != models.TierFree {
		_, err := a.store.SetTier(context.Background(), id, tier, "", "")
		require.NoError(t, err)
	}

	return id, body["token"].(string)
}

var validDoubt = map[string]string{
	"subject":  "physics",
	"chapter":  "Laws of Motion",
	"topic":    "Newton's second law",
	"question": "Why does F equal ma?",
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.signup(t, "asha", models.TierFree)

	w, body := api.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "asha", body["username"])

	w, body = api.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "asha", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, body["error"])

	w, _ = api.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "asha", "email": "asha2@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = api.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateDoubt_NotConfigured(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.signup(t, "asha", models.TierBasic)

	w, body := api.do(t, http.MethodPost, "/api/doubts", token, validDoubt)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AI service not configured", body["error"])

	w, body = api.do(t, http.MethodPost, "/api/doubts", token, "not an object")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AI service not configured", body["error"])
}

func TestCreateDoubt_Success(t *testing.T) {
	api := newTestAPI(t, &stubProvider{text: "Because momentum changes.", tokens: 120})
	userID, token := api.signup(t, "asha", models.TierBasic)

	w, body := api.do(t, http.MethodPost, "/api/doubts", token, validDoubt)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "Because momentum changes.", body["result"])
	assert.Equal(t, float64(10000-120), body["tokensRemaining"])
	doubt := body["doubt"].(map[string]interface{})
	assert.Equal(t, true, doubt["isResolved"])

	user, err := api.store.GetUserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 120, user.TokensUsedToday)

	w, _ = api.do(t, http.MethodGet, "/api/doubts", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateDoubt_Errors(t *testing.T) {
	api := newTestAPI(t, &stubProvider{text: "answer", tokens: 10})
	userID, token := api.signup(t, "asha", models.TierBasic)

	w, body := api.do(t, http.MethodPost, "/api/doubts", token, map[string]string{"subject": "physics"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "chapter is required", body["error"])

	require.NoError(t, api.store.UpdateUserLedger(context.Background(), userID, 10000, time.Now()))

	w, body = api.do(t, http.MethodPost, "/api/doubts", token, validDoubt)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Daily token limit reached. Please upgrade your subscription.", body["error"])
}

func TestListLessons_RequiresClassLevel(t *testing.T) {
	api := newTestAPI(t, nil)

	w, body := api.do(t, http.MethodGet, "/api/lessons", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "classLevel is required", body["error"])

	w, _ = api.do(t, http.MethodGet, "/api/lessons?classLevel=11", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestSubmitQuizResult_FreeTierForbidden(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.signup(t, "asha", models.TierFree)

	w, _ := api.do(t, http.MethodPost, "/api/quiz-results", token, map[string]interface{}{
		"quizId":     uuid.NewString(),
		"lessonId":   uuid.NewString(),
		"userAnswer": "4",
		"timeSpent":  12,
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminUsage_RequiresAdmin(t *testing.T) {
	api := newTestAPI(t, nil)
	_, token := api.signup(t, "asha", models.TierPremium)

	w, _ := api.do(t, http.MethodGet, "/admin/usage", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t, nil)

	w, body := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}
