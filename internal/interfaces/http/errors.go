package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Cierres-api/internal/application/dto"
	"github.com/jhoicas/Cierres-api/internal/domain"
)

// respondError mapea errores del dominio a códigos HTTP.
// 423 Locked se reserva para meses ya cerrados que bloquean recálculos.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrLocked):
		return c.Status(fiber.StatusLocked).JSON(dto.ErrorResponse{Code: "LOCKED", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CANCELLED", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyClosed):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CLOSED", Message: err.Error()})
	case errors.Is(err, domain.ErrFacilityInactive):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "FACILITY_INACTIVE", Message: err.Error()})
	case errors.Is(err, domain.ErrMonthNotClosable):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MONTH_NOT_CLOSABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
