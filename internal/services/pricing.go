package services

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/example/kasira/internal/models"
)

// TaxRate applied to the cart subtotal at order creation.
const TaxRate = 0.10

// PricedLine is a cart line with the unit price snapshotted from the
// catalog.
type PricedLine struct {
	ProductID uuid.UUID
	UnitPrice int64
	Quantity  int
}

// Totals are fixed at order creation; GrandTotal == SubTotal + Tax.
type Totals struct {
	SubTotal   int64
	Tax        int64
	GrandTotal int64
}

// ResolveLines matches requested (product, quantity) pairs against the
// catalog, snapshotting unit prices. Unknown products and quantities
// below 1 are rejected.
func ResolveLines(lines []CartLineInput, catalog map[uuid.UUID]models.Product) ([]PricedLine, error) {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: product %s", ErrQuantityInvalid, line.ProductID)
		}
		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		priced = append(priced, PricedLine{
			ProductID: product.ID,
			UnitPrice: product.Price,
			Quantity:  line.Quantity,
		})
	}
	return priced, nil
}

// CalculateTotals computes subtotal, tax and grand total from priced
// lines. Pure and deterministic; an empty list yields zero totals.
func CalculateTotals(lines []PricedLine) (Totals, error) {
	var subTotal int64
	for _, line := range lines {
		if line.Quantity < 1 {
			return Totals{}, fmt.Errorf("%w: product %s", ErrQuantityInvalid, line.ProductID)
		}
		if line.UnitPrice < 0 {
			return Totals{}, fmt.Errorf("%w: product %s", ErrPriceInvalid, line.ProductID)
		}
		subTotal += line.UnitPrice * int64(line.Quantity)
	}

	tax := int64(math.Round(float64(subTotal) * TaxRate))

	return Totals{
		SubTotal:   subTotal,
		Tax:        tax,
		GrandTotal: subTotal + tax,
	}, nil
}
