package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/internal/utils"
)

// StudentExamHandler exposes the exam-taking surface: listing, admission,
// submission, history and results.
type StudentExamHandler struct {
	admission service.AdmissionService
	student   service.StudentService
	logger    zerolog.Logger
}

// NewStudentExamHandler creates a new handler instance.
func NewStudentExamHandler(admission service.AdmissionService, student service.StudentService, logger zerolog.Logger) *StudentExamHandler {
	return &StudentExamHandler{
		admission: admission,
		student:   student,
		logger:    logger.With().Str("component", "student_exam_handler").Logger(),
	}
}

// Register attaches the student exam endpoints.
func (h *StudentExamHandler) Register(router fiber.Router) {
	router.Get("/exams", h.availableExams)
	router.Get("/exams/:id/take", h.takeExam)
	router.Post("/exams/:id/submit", h.submitExam)
	router.Get("/submissions", h.submittedExams)
	router.Get("/results", h.myResults)
}

func (h *StudentExamHandler) availableExams(c *fiber.Ctx) error {
	exams, err := h.student.AvailableExams(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exams retrieved", exams)
}

func (h *StudentExamHandler) takeExam(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	exam, err := h.admission.CanStart(c.Context(), userIDFromContext(c), examID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exam ready", exam)
}

func (h *StudentExamHandler) submitExam(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExamSubmissionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.admission.Submit(c.Context(), userIDFromContext(c), examID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam submitted", result)
}

func (h *StudentExamHandler) submittedExams(c *fiber.Ctx) error {
	submitted, err := h.student.SubmittedExams(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submitted)
}

func (h *StudentExamHandler) myResults(c *fiber.Ctx) error {
	results, err := h.student.MyResults(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "results retrieved", results)
}
