package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/dto"
	"github.com/noah-isme/exam-portal-api/internal/models"
	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/internal/utils"
)

// ExamHandler exposes the authoring surface for exams and their questions.
type ExamHandler struct {
	exams     service.ExamService
	questions service.QuestionService
	logger    zerolog.Logger
}

// NewExamHandler creates a new handler instance.
func NewExamHandler(exams service.ExamService, questions service.QuestionService, logger zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		exams:     exams,
		questions: questions,
		logger:    logger.With().Str("component", "exam_handler").Logger(),
	}
}

// Register attaches the authoring endpoints.
func (h *ExamHandler) Register(router fiber.Router) {
	router.Post("/exams", h.createExam)
	router.Get("/exams", h.listExams)
	router.Get("/exams/:id", h.getExam)
	router.Put("/exams/:id", h.updateExam)
	router.Delete("/exams/:id", h.deleteExam)

	router.Post("/exams/:id/questions", h.addQuestion)
	router.Get("/exams/:id/questions", h.listQuestions)
	router.Put("/questions/:id", h.updateQuestion)
	router.Delete("/questions/:id", h.deleteQuestion)
}

func (h *ExamHandler) createExam(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.exams.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ExamHandler) listExams(c *fiber.Ctx) error {
	var (
		exams []dto.ExamResponse
		err   error
	)
	// Admins see everything; teachers see their own exams.
	if userRoleFromContext(c) == models.RoleAdmin {
		exams, err = h.exams.ListAll(c.Context())
	} else {
		exams, err = h.exams.ListForCreator(c.Context(), userIDFromContext(c))
	}
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exams retrieved", exams)
}

func (h *ExamHandler) getExam(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	exam, questions, err := h.exams.Get(c.Context(), examID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exam retrieved", fiber.Map{
		"exam":      exam,
		"questions": questions,
	})
}

func (h *ExamHandler) updateExam(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExamUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	exam, err := h.exams.Update(c.Context(), userIDFromContext(c), userRoleFromContext(c), examID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exam updated", exam)
}

func (h *ExamHandler) deleteExam(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.exams.Delete(c.Context(), userIDFromContext(c), userRoleFromContext(c), examID); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "exam deleted", nil)
}

func (h *ExamHandler) addQuestion(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.questions.Add(c.Context(), userIDFromContext(c), userRoleFromContext(c), examID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question added", question)
}

func (h *ExamHandler) listQuestions(c *fiber.Ctx) error {
	examID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	questions, err := h.questions.ListByExam(c.Context(), userIDFromContext(c), userRoleFromContext(c), examID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "questions retrieved", questions)
}

func (h *ExamHandler) updateQuestion(c *fiber.Ctx) error {
	questionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.QuestionUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	question, err := h.questions.Update(c.Context(), userIDFromContext(c), userRoleFromContext(c), questionID, payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "question updated", question)
}

func (h *ExamHandler) deleteQuestion(c *fiber.Ctx) error {
	questionID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.questions.Delete(c.Context(), userIDFromContext(c), userRoleFromContext(c), questionID); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "question deleted", nil)
}
