package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/config"
	"github.com/noah-isme/exam-portal-api/internal/database"
	"github.com/noah-isme/exam-portal-api/internal/events"
	"github.com/noah-isme/exam-portal-api/internal/handler"
	"github.com/noah-isme/exam-portal-api/internal/middleware"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/repository"
	"github.com/noah-isme/exam-portal-api/internal/router"
	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/pkg/oracle"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Exam{}, &models.Question{}, &models.StudentResponse{}, &models.Evaluation{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		// The dashboard degrades to uncached reads without Redis.
		logger.Warn().Err(err).Msg("redis unavailable, dashboard caching disabled")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events disabled")
		} else {
			defer natsConn.Drain()
		}
	}
	publisher := events.NewPublisher(natsConn, logger)

	var transport oracle.Transport
	if cfg.OracleAPIKey != "" {
		openaiTransport, err := oracle.NewOpenAITransport(oracle.OpenAIConfig{
			APIKey:  cfg.OracleAPIKey,
			BaseURL: cfg.OracleBaseURL,
			Model:   cfg.OracleModel,
			Logger:  logger,
		})
		if err != nil {
			log.Fatalf("failed to create oracle transport: %v", err)
		}
		transport = openaiTransport
	} else {
		logger.Warn().Msg("oracle api key missing, free-text evaluation disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	examRepo := repository.NewExamRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)

	seedService := service.NewSeedService(userRepo, logger)
	if err := seedService.EnsureAdmin(context.Background(), service.AdminSeed{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	}); err != nil {
		log.Fatalf("failed to seed admin account: %v", err)
	}

	authService := service.NewAuthService(userRepo, validate, logger, service.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	})
	examService := service.NewExamService(examRepo, validate, logger)
	questionService := service.NewQuestionService(examRepo, questionRepo, validate, logger)
	admissionService := service.NewAdmissionService(examRepo, questionRepo, responseRepo, publisher, validate, logger, service.AdmissionConfig{
		GracePeriod: cfg.GracePeriod,
	})
	evaluationService := service.NewEvaluationService(examRepo, responseRepo, evaluationRepo, transport, publisher, logger, service.EvaluationConfig{
		Retry: oracle.RetryPolicy{
			MaxAttempts:    cfg.OracleMaxAttempts,
			MinBackoff:     cfg.OracleMinBackoff,
			MaxBackoff:     cfg.OracleMaxBackoff,
			AttemptTimeout: cfg.OracleCallTimeout,
		},
	})
	studentService := service.NewStudentService(examRepo, responseRepo, logger, nil)
	dashboardService := service.NewStudentDashboardService(examRepo, responseRepo, redisClient, cfg.DashboardCacheTTL, logger, nil)
	adminService := service.NewAdminService(userRepo, examRepo, responseRepo, evaluationRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:             handler.NewAuthHandler(authService, logger),
		ExamHandler:             handler.NewExamHandler(examService, questionService, logger),
		StudentExamHandler:      handler.NewStudentExamHandler(admissionService, studentService, logger),
		StudentDashboardHandler: handler.NewStudentDashboardHandler(dashboardService, logger),
		AdminHandler:            handler.NewAdminHandler(adminService, logger),
		EvaluationHandler:       handler.NewEvaluationHandler(evaluationService, logger),
		ClockHandler:            handler.NewClockHandler(examRepo, logger),
		JWTMiddleware:           middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
