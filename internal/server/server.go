package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aman-churiwal/tutor-gateway/internal/circuitbreaker"
	"github.com/aman-churiwal/tutor-gateway/internal/config"
	"github.com/aman-churiwal/tutor-gateway/internal/gateway"
	"github.com/aman-churiwal/tutor-gateway/internal/handler"
	"github.com/aman-churiwal/tutor-gateway/internal/healthcheck"
	"github.com/aman-churiwal/tutor-gateway/internal/jobs"
	"github.com/aman-churiwal/tutor-gateway/internal/metrics"
	"github.com/aman-churiwal/tutor-gateway/internal/middleware"
	"github.com/aman-churiwal/tutor-gateway/internal/payments"
	"github.com/aman-churiwal/tutor-gateway/internal/provider"
	"github.com/aman-churiwal/tutor-gateway/internal/quiz"
	"github.com/aman-churiwal/tutor-gateway/internal/repository"
	"github.com/aman-churiwal/tutor-gateway/internal/service"
	"github.com/aman-churiwal/tutor-gateway/internal/storage"
	"github.com/aman-churiwal/tutor-gateway/internal/tier"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router     *gin.Engine
	config     *config.Config
	store      repository.Repository
	redis      *storage.RedisClient
	httpServer *http.Server

	authService *service.AuthService
	recorder    *gateway.UsageRecorder
	checker     *healthcheck.Checker
	scheduler   *jobs.Scheduler

	auth         *handler.AuthHandler
	tutoring     *handler.TutoringHandler
	learning     *handler.LearningHandler
	quizzes      *handler.QuizHandler
	engagement   *handler.EngagementHandler
	subscription *handler.SubscriptionHandler
	analytics    *handler.AnalyticsHandler
	system       *handler.SystemHandler
}

// New wires every service against store. redis may be nil, in which case
// rate limiting and logout revocation are disabled.
func New(cfg *config.Config, store repository.Repository, redis *storage.RedisClient) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	ai, err := newProvider(cfg.AI)
	if err != nil {
		return nil, err
	}

	recorder := gateway.NewUsageRecorder(store, cfg.Usage.BufferSize)
	gw := gateway.New(store, completionProvider(ai), tier.NewGate(store).WithLocation(loc), recorder)

	var denylist service.TokenDenylist
	if redis != nil {
		denylist = service.NewRedisDenylist(redis)
	}
	authService := service.NewAuthService(store, denylist, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	var payer payments.Provider
	if cfg.Payments.StripeSecretKey != "" {
		payer = payments.NewStripe(payments.StripeConfig{
			SecretKey:     cfg.Payments.StripeSecretKey,
			WebhookSecret: cfg.Payments.WebhookSecret,
			AppURL:        cfg.Payments.AppURL,
			Currency:      cfg.Payments.Currency,
		})
	}

	analytics := service.NewAnalyticsService(store)
	scheduler, err := jobs.NewScheduler(analytics, cfg.Usage.CleanupSchedule, cfg.Usage.RetentionDays)
	if err != nil {
		return nil, err
	}

	var pool *provider.KeyPool
	if ai != nil {
		pool = ai.Pool()
	}
	checker := healthcheck.NewChecker(&healthcheck.Config{Probes: probes(store, redis, pool)})

	s := &Server{
		router:      gin.New(),
		config:      cfg,
		store:       store,
		redis:       redis,
		authService: authService,
		recorder:    recorder,
		checker:     checker,
		scheduler:   scheduler,

		auth:         handler.NewAuthHandler(authService),
		tutoring:     handler.NewTutoringHandler(gw, store),
		learning:     handler.NewLearningHandler(service.NewLearningService(store)),
		quizzes:      handler.NewQuizHandler(quiz.NewService(store, gw)),
		engagement:   handler.NewEngagementHandler(service.NewEngagementService(store)),
		subscription: handler.NewSubscriptionHandler(service.NewSubscriptionService(store, payer).WithRateLimits(cfg)),
		analytics:    handler.NewAnalyticsHandler(analytics),
		system:       handler.NewSystemHandler(checker, pool),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func newProvider(cfg config.AIConfig) (*provider.OpenAI, error) {
	if !cfg.Enabled() {
		log.Println("No AI API keys configured, tutoring endpoints will return 503")
		return nil, nil
	}

	return provider.NewOpenAI(provider.OpenAIConfig{
		APIKeys:  cfg.APIKeys,
		BaseURL:  cfg.BaseURL,
		Strategy: cfg.KeyStrategy,
		Timeout:  cfg.Timeout(),
		Breaker: circuitbreaker.Config{
			MaxFailures:     cfg.Breaker.MaxFailures,
			Timeout:         time.Duration(cfg.Breaker.TimeoutSeconds) * time.Second,
			HalfOpenSuccess: cfg.Breaker.HalfOpenSuccess,
			OnStateChange:   breakerStateChanged,
		},
	})
}

// Keeps a nil *OpenAI from becoming a non-nil interface.
func completionProvider(ai *provider.OpenAI) provider.Provider {
	if ai == nil {
		return nil
	}
	return ai
}

func breakerStateChanged(name string, from, to circuitbreaker.State) {
	metrics.BreakerState.WithLabelValues(name).Set(float64(to))
	log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
}

func probes(store repository.Repository, redis *storage.RedisClient, pool *provider.KeyPool) []healthcheck.Probe {
	list := []healthcheck.Probe{
		{Name: "database", Critical: true, Check: store.Ping},
	}

	if redis != nil {
		list = append(list, healthcheck.Probe{Name: "redis", Check: redis.Ping})
	}

	if pool != nil {
		list = append(list, healthcheck.Probe{Name: "ai_provider", Check: func(ctx context.Context) error {
			for _, slot := range pool.Slots() {
				if slot.Breaker.Ready() {
					return nil
				}
			}
			return errors.New("every provider key has an open circuit")
		}})
	}

	return list
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger())
	s.router.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	s.router.Use(middleware.Metrics())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.system.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(s.authService)
	rateLimit := middleware.RateLimitWithTier(s.redis, s.config, s.store)

	api := s.router.Group("/api")

	// Stripe retries on non-2xx, so the webhook is never rate limited
	api.POST("/subscription/webhook", s.subscription.Webhook)

	public := api.Group("", rateLimit)
	{
		public.POST("/auth/register", s.auth.Register)
		public.POST("/auth/login", s.auth.Login)
		public.GET("/subscription/tiers", s.subscription.Tiers)
		public.GET("/lessons", s.learning.ListLessons)
		public.GET("/lessons/:id", s.learning.GetLesson)
	}

	protected := api.Group("", requireAuth, rateLimit)
	{
		protected.POST("/auth/logout", s.auth.Logout)
		protected.GET("/auth/me", s.auth.Me)
		protected.PATCH("/user/profile", s.auth.UpdateProfile)

		protected.POST("/doubts", s.tutoring.CreateDoubt)
		protected.GET("/doubts", s.tutoring.ListDoubts)
		protected.POST("/derivations", s.tutoring.CreateDerivation)
		protected.GET("/derivations", s.tutoring.ListDerivations)

		protected.POST("/lessons/:id/start", s.learning.StartLesson)
		protected.GET("/progress", s.learning.ListProgress)
		protected.PATCH("/progress/:progressId", s.learning.UpdateProgress)

		protected.GET("/quizzes/:lessonId", s.quizzes.GetQuizzes)
		protected.POST("/quiz-results", s.quizzes.SubmitResult)
		protected.GET("/quiz-results", s.quizzes.ListResults)

		protected.GET("/quests", s.engagement.ListQuests)
		protected.GET("/user-quests", s.engagement.ListUserQuests)
		protected.POST("/quests/:questId/start", s.engagement.StartQuest)
		protected.GET("/achievements", s.engagement.ListAchievements)
		protected.GET("/user-achievements", s.engagement.ListUserAchievements)

		protected.POST("/subscription/create-checkout", s.subscription.CreateCheckout)
	}

	admin := s.router.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/usage", s.analytics.GetSummary)
		admin.GET("/usage/timeseries", s.analytics.GetTimeSeries)
		admin.GET("/usage/users/:id", s.analytics.GetUserUsage)
		admin.GET("/providers", s.system.ProviderStatus)
		admin.POST("/providers/:key/reset", s.system.ResetProvider)
	}
}

// Run starts the background workers and blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	s.recorder.Start()
	s.checker.Start()
	s.scheduler.Start()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting tutor gateway on %s", addr)
	log.Printf("Environment: %s", s.config.Server.Environment)

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests, then drains the workers so buffered
// usage events reach the store.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down server...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}

	s.scheduler.Stop(ctx)
	s.checker.Stop()
	s.recorder.Close()

	return err
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
