package app

import (
	"aerocrew_training_backend/internal/config"
	"aerocrew_training_backend/internal/controller"
	"aerocrew_training_backend/internal/repository"
	"aerocrew_training_backend/internal/service"
	"aerocrew_training_backend/pkg/database"
	"aerocrew_training_backend/pkg/logger"
	"aerocrew_training_backend/pkg/monitoring"
	"aerocrew_training_backend/pkg/security"
	"aerocrew_training_backend/pkg/tracing"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services

	// Set when tracing is enabled; flushed on graceful exit.
	tracerShutdown func(context.Context) error
}

type repositories struct {
	user            *repository.UserRepository
	quiz            *repository.QuizRepository
	token           *repository.TokenRepository
	attempt         *repository.AttemptRepository
	examRequest     *repository.ExamRequestRepository
	trainingRequest *repository.TrainingRequestRepository
	staff           *repository.StaffRepository
}

type services struct {
	auth       *service.AuthService
	quiz       *service.QuizService
	token      *service.TokenService
	attempt    *service.AttemptService
	assignment *service.AssignmentService
	request    *service.RequestService
	staff      *service.StaffService
	notifier   *service.WebhookNotifier
}

type controllers struct {
	auth       *controller.AuthController
	quiz       *controller.QuizController
	token      *controller.TokenController
	attempt    *controller.AttemptController
	assignment *controller.AssignmentController
	request    *controller.RequestController
	staff      *controller.StaffController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:            repository.NewUserRepository(db),
		quiz:            repository.NewQuizRepository(db),
		token:           repository.NewTokenRepository(db),
		attempt:         repository.NewAttemptRepository(db),
		examRequest:     repository.NewExamRequestRepository(db),
		trainingRequest: repository.NewTrainingRequestRepository(db),
		staff:           repository.NewStaffRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.notifier = service.NewWebhookNotifier(cfg.Notification)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.quiz = service.NewQuizService(repos.quiz, rdb, time.Duration(cfg.Engine.QuizCacheTTLSeconds)*time.Second)

	// The engine services read quizzes through the caching service, not
	// the repository.
	s.token = service.NewTokenService(repos.token, s.quiz)
	s.attempt = service.NewAttemptService(
		repos.attempt,
		s.quiz,
		s.token,
		s.notifier,
		time.Duration(cfg.Engine.SweepGraceSeconds)*time.Second,
	)
	s.assignment = service.NewAssignmentService(repos.examRequest, repos.trainingRequest, repos.staff, s.notifier)
	s.request = service.NewRequestService(repos.examRequest, repos.trainingRequest, repos.staff)
	s.staff = service.NewStaffService(repos.staff)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		quiz:       controller.NewQuizController(s.quiz),
		token:      controller.NewTokenController(s.token),
		attempt:    controller.NewAttemptController(s.attempt),
		assignment: controller.NewAssignmentController(s.assignment),
		request:    controller.NewRequestController(s.request),
		staff:      controller.NewStaffController(s.staff),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks runs the expiry sweep that auto-submits timed
// attempts whose clients never came back.
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) {
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Engine.SweepIntervalSeconds) * time.Second)
		for range ticker.C {
			swept, err := s.attempt.SweepExpired()
			if err != nil {
				logger.Log.Error("attempt expiry sweep failed", zap.Error(err))
				continue
			}
			if swept > 0 {
				logger.Log.Info("auto-submitted expired attempts", zap.Int("count", swept))
			}
		}
	}()
}

// ReloadConfig applies hot-reloadable settings from a freshly parsed
// config file.
func (a *App) ReloadConfig(cfg *config.Config) {
	if a.services != nil && a.services.notifier != nil {
		a.services.notifier.Reconfigure(cfg.Notification)
	}
	logger.Log.Info("configuration reloaded")
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("aerocrew-training", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerShutdown = tp.Shutdown
	}

	app.registerRoutes(router, controllers, repos, cfg)

	app.startBackgroundTasks(services, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
