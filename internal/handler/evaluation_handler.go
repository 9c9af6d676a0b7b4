package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/internal/utils"
)

// EvaluationHandler serves the grading surface: per-exam result sheets and
// triggering the evaluation of a single student response.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler creates a new handler instance.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the evaluation endpoints.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Get("/exams/:id/results", h.examResults)
	router.Post("/responses/:id/evaluate", h.evaluate)
}

func (h *EvaluationHandler) examResults(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	results, err := h.service.ExamResults(c.Context(), userIDFromContext(c), userRoleFromContext(c), examID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exam results", results)
}

func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	responseID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	evaluation, err := h.service.Evaluate(c.Context(), responseID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "response evaluated", evaluation)
}
