package handlers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/kasira/internal/cart"
	"github.com/example/kasira/internal/middleware"
	"github.com/example/kasira/internal/models"
	"github.com/example/kasira/internal/services"
)

// CartStore owns one cart value per authenticated user. Carts are
// pre-order state only; nothing here is persisted, and all mutation
// goes through the cart package's pure transition functions.
type CartStore struct {
	mu    sync.RWMutex
	carts map[uuid.UUID]cart.Cart
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[uuid.UUID]cart.Cart)}
}

// Get returns the user's current cart value.
func (s *CartStore) Get(userID uuid.UUID) cart.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[userID]
}

// Update applies a pure transition to the user's cart.
func (s *CartStore) Update(userID uuid.UUID, fn func(cart.Cart) cart.Cart) cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.carts[userID])
	s.carts[userID] = next
	return next
}

// CartHandler manages the session cart endpoints.
type CartHandler struct {
	db     *gorm.DB
	store  *CartStore
	orders *services.OrderService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, store *CartStore, orders *services.OrderService) *CartHandler {
	return &CartHandler{db: db, store: store, orders: orders}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// GetCart returns the user's cart lines together with a pricing
// preview.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	current := h.store.Get(userID)

	var totals services.Totals
	if !current.IsEmpty() {
		var err error
		_, totals, err = h.orders.Quote(c.Context(), cartLineInputs(current))
		if err != nil {
			return mapServiceError(err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"items":       current.Lines,
			"sub_total":   totals.SubTotal,
			"tax":         totals.Tax,
			"grand_total": totals.GrandTotal,
		},
	})
}

// AddItem puts one unit of a product into the user's cart, or
// increments the existing line.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req addCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	next := h.store.Update(userID, func(current cart.Cart) cart.Cart {
		return current.Add(cart.Item{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			ImageURL:  product.ImageURL,
		})
	})

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"items": next.Lines}})
}

// RemoveItem drops a product's line from the user's cart.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := uuid.Parse(c.Params("productId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
	}

	next := h.store.Update(userID, func(current cart.Cart) cart.Cart {
		return current.Remove(productID)
	})

	return c.JSON(fiber.Map{"success": true, "data": fiber.Map{"items": next.Lines}})
}

// ClearCart empties the user's cart.
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	h.store.Update(userID, func(current cart.Cart) cart.Cart {
		return current.Clear()
	})

	return c.JSON(fiber.Map{"success": true})
}

func cartLineInputs(c cart.Cart) []services.CartLineInput {
	lines := make([]services.CartLineInput, 0, len(c.Lines))
	for _, line := range c.Lines {
		lines = append(lines, services.CartLineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}
	return lines
}
