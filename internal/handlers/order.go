package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/kasira/internal/cart"
	"github.com/example/kasira/internal/middleware"
	"github.com/example/kasira/internal/services"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	orders *services.OrderService
	carts  *CartStore
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(orders *services.OrderService, carts *CartStore) *OrderHandler {
	return &OrderHandler{orders: orders, carts: carts}
}

type orderLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	OrderItems []orderLineRequest `json:"order_items"`
}

func parseOrderLines(reqLines []orderLineRequest) ([]services.CartLineInput, error) {
	lines := make([]services.CartLineInput, 0, len(reqLines))
	for _, line := range reqLines {
		id, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
		}
		lines = append(lines, services.CartLineInput{ProductID: id, Quantity: line.Quantity})
	}
	return lines, nil
}

// CreateOrder creates an order from the submitted cart lines, falling
// back to the user's session cart when no lines are supplied. The
// session cart is cleared once, on success only.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	lines, err := parseOrderLines(req.OrderItems)
	if err != nil {
		return err
	}

	fromSessionCart := false
	userID, authed := middleware.GetCurrentUserID(c)
	if len(lines) == 0 && authed {
		lines = cartLineInputs(h.carts.Get(userID))
		fromSessionCart = true
	}

	created, err := h.orders.CreateOrder(c.Context(), lines)
	if err != nil {
		return mapServiceError(err)
	}

	if fromSessionCart {
		h.carts.Update(userID, func(current cart.Cart) cart.Cart {
			return current.Clear()
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"order":     created.Order,
			"qr_string": created.QRString,
		},
	})
}

// QuoteCart prices cart lines without creating anything.
func (h *OrderHandler) QuoteCart(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	lines, err := parseOrderLines(req.OrderItems)
	if err != nil {
		return err
	}

	_, totals, err := h.orders.Quote(c.Context(), lines)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"sub_total":   totals.SubTotal,
			"tax":         totals.Tax,
			"grand_total": totals.GrandTotal,
		},
	})
}

// ListOrders returns orders with item counts, optionally filtered by
// status ("all" disables filtering).
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	summaries, err := h.orders.ListOrders(c.Context(), c.Query("status", "all"))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": summaries})
}

// GetOrder returns a single order with its items.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	order, err := h.orders.GetOrder(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// RequestPaymentCode re-requests a QR payment code for an order whose
// gateway call failed after the order was persisted. Idempotent per
// order id.
func (h *OrderHandler) RequestPaymentCode(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	qr, err := h.orders.RequestPaymentCode(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"qr_string": qr}})
}

// CheckPaymentStatus is the client poll: has this order been paid?
func (h *OrderHandler) CheckPaymentStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	paid, err := h.orders.CheckPaymentStatus(c.Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"paid": paid}})
}

// SimulatePayment triggers the sandbox payment for an order.
func (h *OrderHandler) SimulatePayment(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.orders.SimulatePayment(c.Context(), id); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// FinishOrder moves a PROCESSING order to DONE.
func (h *OrderHandler) FinishOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.orders.FinishOrder(c.Context(), id); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"success": true})
}
