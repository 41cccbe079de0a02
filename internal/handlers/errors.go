package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kasira/internal/services"
)

// mapServiceError translates service-layer errors into fiber errors so
// handlers surface consistent status codes.
func mapServiceError(err error) error {
	var invalidState *services.InvalidStateError
	var gatewayErr *services.GatewayError

	switch {
	case err == nil:
		return nil
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrQuantityInvalid),
		errors.Is(err, services.ErrPriceInvalid),
		errors.Is(err, services.ErrInvalidStatusFilter):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNoPaymentRequest):
		return fiber.NewError(fiber.StatusConflict, services.ErrNoPaymentRequest.Error())
	case errors.Is(err, services.ErrDuplicateRequest):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.As(err, &invalidState):
		return fiber.NewError(fiber.StatusConflict, invalidState.Error())
	case errors.As(err, &gatewayErr):
		return fiber.NewError(fiber.StatusBadGateway, "payment provider unavailable")
	}
	return err
}
