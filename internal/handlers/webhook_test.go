package handlers_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/kasira/internal/handlers"
	"github.com/example/kasira/internal/models"
	"github.com/example/kasira/internal/services"
)

// stubReconciler backs the webhook handler with a fixed set of known
// orders instead of a database.
type stubReconciler struct {
	known      map[uuid.UUID]bool // order id -> already paid
	markedPaid []uuid.UUID
}

func (s *stubReconciler) GetOrder(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	if _, ok := s.known[orderID]; !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrOrderNotFound, orderID)
	}
	return &models.Order{}, nil
}

func (s *stubReconciler) MarkPaid(_ context.Context, orderID uuid.UUID) (bool, error) {
	if _, ok := s.known[orderID]; !ok {
		return false, fmt.Errorf("%w: %s", services.ErrOrderNotFound, orderID)
	}
	s.markedPaid = append(s.markedPaid, orderID)
	return true, nil
}

func webhookApp(orders *stubReconciler) *fiber.App {
	handler := handlers.NewWebhookHandler(orders, zap.NewNop())

	app := fiber.New()
	app.Post("/payments/webhook", handler.HandlePaymentEvent)
	return app
}

func postWebhook(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/payments/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func webhookBody(referenceID, status string) string {
	return fmt.Sprintf(`{
		"event": "payment.succeeded",
		"data": {"id": "pay-1", "amount": 22000, "reference_id": %q, "status": %q}
	}`, referenceID, status)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	app := webhookApp(&stubReconciler{})
	status := postWebhook(t, app, `{"event":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestWebhookUnknownReferenceIsNotFound(t *testing.T) {
	// A reference id that is not even a UUID can never match an order.
	app := webhookApp(&stubReconciler{})
	status := postWebhook(t, app, webhookBody("not-a-uuid", "SUCCEEDED"))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestWebhookUnknownOrderWinsOverBadStatus(t *testing.T) {
	// The order lookup runs first: a reference id matching no order is
	// 404 even when the payload also carries a non-success status.
	orders := &stubReconciler{known: map[uuid.UUID]bool{}}
	app := webhookApp(orders)

	status := postWebhook(t, app, webhookBody(uuid.NewString(), "FAILED"))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Empty(t, orders.markedPaid)
}

func TestWebhookNonSuccessStatusIsUnprocessable(t *testing.T) {
	orderID := uuid.New()
	orders := &stubReconciler{known: map[uuid.UUID]bool{orderID: false}}
	app := webhookApp(orders)

	status := postWebhook(t, app, webhookBody(orderID.String(), "FAILED"))
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Empty(t, orders.markedPaid)
}

func TestWebhookConfirmsKnownOrder(t *testing.T) {
	orderID := uuid.New()
	orders := &stubReconciler{known: map[uuid.UUID]bool{orderID: false}}
	app := webhookApp(orders)

	status := postWebhook(t, app, webhookBody(orderID.String(), "SUCCEEDED"))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, []uuid.UUID{orderID}, orders.markedPaid)
}
