package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/kasira/internal/models"
	"github.com/example/kasira/internal/services"
)

// orderReconciler is the slice of the order service the webhook needs:
// resolving the referenced order and applying the paid transition.
type orderReconciler interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID) (bool, error)
}

// WebhookHandler receives provider payment notifications. Every
// rejection path answers with a non-2xx status so the provider retries;
// nothing is allowed to mutate order state before the callback token
// middleware has passed.
type WebhookHandler struct {
	orders orderReconciler
	log    *zap.Logger
}

func NewWebhookHandler(orders orderReconciler, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{orders: orders, log: log}
}

type webhookRequest struct {
	Event string `json:"event"`
	Data  struct {
		ID               string `json:"id"`
		Amount           int64  `json:"amount"`
		PaymentRequestID string `json:"payment_request_id"`
		ReferenceID      string `json:"reference_id"`
		Status           string `json:"status"`
	} `json:"data"`
}

// HandlePaymentEvent reconciles a payment.succeeded notification with
// the order referenced by reference_id. Duplicate deliveries are
// answered 200 without reapplying the transition.
func (h *WebhookHandler) HandlePaymentEvent(c *fiber.Ctx) error {
	var req webhookRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	orderID, err := uuid.Parse(req.Data.ReferenceID)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	}

	// Resolve the order before judging the payload status: an unknown
	// reference_id is 404 even when the reported status is not a success.
	if _, err := h.orders.GetOrder(c.Context(), orderID); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if req.Data.Status != "SUCCEEDED" {
		h.log.Warn("webhook reported non-success payment",
			zap.String("order_id", orderID.String()),
			zap.String("status", req.Data.Status))
		return fiber.NewError(fiber.StatusUnprocessableEntity, services.ErrPaymentNotSuccessful.Error())
	}

	confirmed, err := h.orders.MarkPaid(c.Context(), orderID)
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	if !confirmed {
		// paid_at was still null after the conditional update; nothing
		// was applied, let the provider retry.
		return fiber.NewError(fiber.StatusUnprocessableEntity, services.ErrPaymentNotSuccessful.Error())
	}

	return c.JSON(fiber.Map{"success": true})
}
