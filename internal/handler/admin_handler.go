package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/internal/utils"
)

// AdminHandler exposes platform statistics, account verification and the
// full results listing.
type AdminHandler struct {
	service service.AdminService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new handler instance.
func NewAdminHandler(service service.AdminService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_handler").Logger(),
	}
}

// Register attaches the admin endpoints.
func (h *AdminHandler) Register(router fiber.Router) {
	router.Get("/stats", h.stats)
	router.Get("/users", h.listUsers)
	router.Patch("/users/:id/verify", h.verifyUser)
	router.Get("/results", h.listResults)
}

func (h *AdminHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "stats retrieved", stats)
}

func (h *AdminHandler) listUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.Context(), c.Query("role"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "users retrieved", users)
}

func (h *AdminHandler) verifyUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	user, err := h.service.VerifyUser(c.Context(), userID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.SendSuccess(c, "user verified", user)
}

func (h *AdminHandler) listResults(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}

	results, total, err := h.service.ListResults(c.Context(), page, pageSize)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err)
	}

	return utils.OK(c, results, "results retrieved", fiber.Map{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
