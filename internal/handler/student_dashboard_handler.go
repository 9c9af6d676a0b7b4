package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/internal/utils"
)

// StudentDashboardHandler exposes the student dashboard endpoint.
type StudentDashboardHandler struct {
	service service.StudentDashboardService
	logger  zerolog.Logger
}

// NewStudentDashboardHandler creates a new handler instance.
func NewStudentDashboardHandler(service service.StudentDashboardService, logger zerolog.Logger) *StudentDashboardHandler {
	return &StudentDashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "student_dashboard_handler").Logger(),
	}
}

// Register attaches the dashboard endpoint.
func (h *StudentDashboardHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
}

func (h *StudentDashboardHandler) getDashboard(c *fiber.Ctx) error {
	studentID := userIDFromContext(c)
	if studentID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "missing user context")
	}

	dashboard, err := h.service.GetDashboard(c.Context(), studentID)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Uint("student_id", studentID).Msg("failed to load dashboard")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load dashboard")
	}

	return utils.SendSuccess(c, "dashboard retrieved", dashboard)
}
