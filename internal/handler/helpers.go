package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/exam-portal-api/internal/middleware"
	"github.com/noah-isme/exam-portal-api/internal/service"
	"github.com/noah-isme/exam-portal-api/internal/utils"
)

func parseIDParam(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(value), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func userIDFromContext(c *fiber.Ctx) uint {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(uint); ok {
			return id
		}
		if id, ok := v.(int); ok {
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}

func userRoleFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_role"); v != nil {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps a service sentinel to its HTTP response. Unknown
// errors become a 500 without leaking the cause to the client.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrQuestionNotFound),
		errors.Is(err, service.ErrResponseNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrAlreadyEvaluated),
		errors.Is(err, service.ErrEmailAlreadyRegistered):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrExamNotActive),
		errors.Is(err, service.ErrDeadlinePassed),
		errors.Is(err, service.ErrAccountNotVerified),
		errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInvalidExamConfiguration),
		errors.Is(err, service.ErrNoValidAnswers),
		errors.Is(err, service.ErrInvalidQuestionShape):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrContentBlocked):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrOracleUnavailable),
		errors.Is(err, service.ErrMalformedOracleOutput):
		return utils.SendError(c, fiber.StatusBadGateway, err.Error())
	default:
		logger.Error().Err(err).Msg("request failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
