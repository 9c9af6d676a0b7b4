package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/exam-portal-api/internal/config"
	"github.com/noah-isme/exam-portal-api/internal/handler"
	"github.com/noah-isme/exam-portal-api/internal/middleware"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler             *handler.AuthHandler
	ExamHandler             *handler.ExamHandler
	StudentExamHandler      *handler.StudentExamHandler
	StudentDashboardHandler *handler.StudentDashboardHandler
	AdminHandler            *handler.AdminHandler
	EvaluationHandler       *handler.EvaluationHandler
	ClockHandler            *handler.ClockHandler
	JWTMiddleware           fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute))
		deps.AuthHandler.Register(auth)
	}

	if deps.ExamHandler != nil || deps.EvaluationHandler != nil {
		teacher := api.Group("/teacher", jwtMiddleware, middleware.RequireRole(models.RoleTeacher, models.RoleAdmin))
		if deps.ExamHandler != nil {
			deps.ExamHandler.Register(teacher)
		}
		if deps.EvaluationHandler != nil {
			deps.EvaluationHandler.Register(teacher)
		}
	}

	if deps.StudentExamHandler != nil || deps.StudentDashboardHandler != nil {
		student := api.Group("/student", jwtMiddleware, middleware.RequireRole(models.RoleStudent))
		if deps.StudentExamHandler != nil {
			deps.StudentExamHandler.Register(student)
		}
		if deps.StudentDashboardHandler != nil {
			deps.StudentDashboardHandler.Register(student)
		}
	}

	if deps.AdminHandler != nil {
		admin := api.Group("/admin", jwtMiddleware, middleware.RequireRole(models.RoleAdmin))
		deps.AdminHandler.Register(admin)
	}

	if deps.ClockHandler != nil {
		deps.ClockHandler.Register(api)
	}
}
