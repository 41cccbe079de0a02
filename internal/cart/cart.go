// Package cart models the pre-order cart as an immutable value.
// Mutations return a new Cart so a cart can be held per session or per
// request without shared state.
package cart

import "github.com/google/uuid"

// Item identifies a product being added to a cart. Quantity is implied:
// adding an item already present increments its line by one.
type Item struct {
	ProductID uuid.UUID
	Name      string
	Price     int64
	ImageURL  string
}

// Line is a cart entry, unique per product.
type Line struct {
	ProductID uuid.UUID
	Name      string
	Price     int64
	Quantity  int
	ImageURL  string
}

// Cart is a value type; the zero value is an empty cart.
type Cart struct {
	Lines []Line
}

// Add returns a cart with the item appended at quantity 1, or with the
// existing line's quantity incremented. The receiver is not modified.
func (c Cart) Add(item Item) Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)

	for i := range lines {
		if lines[i].ProductID == item.ProductID {
			lines[i].Quantity++
			return Cart{Lines: lines}
		}
	}

	lines = append(lines, Line{
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  1,
		ImageURL:  item.ImageURL,
	})
	return Cart{Lines: lines}
}

// Remove returns a cart without the line for the given product.
func (c Cart) Remove(productID uuid.UUID) Cart {
	lines := make([]Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	return Cart{Lines: lines}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
