package handlers

import (
	"errors"

	"frontdesk/internal/dto"
	"frontdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. Unknown errors are
// logged and reported as a bare 500.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	switch {
	case service.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(dto.Fail(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.Fail("Not found"))
	case errors.Is(err, service.ErrAlreadyTimedOut):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail("Request timed out before a response arrived"))
	case errors.Is(err, service.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
	case errors.Is(err, service.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.Fail(err.Error()))
	default:
		logger.Error("Request failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.Fail("Internal server error"))
	}
}
