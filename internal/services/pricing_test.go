package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/kasira/internal/models"
)

func TestCalculateTotalsExample(t *testing.T) {
	totals, err := CalculateTotals([]PricedLine{
		{ProductID: uuid.New(), UnitPrice: 10000, Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: 5000, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(25000), totals.SubTotal)
	assert.Equal(t, int64(2500), totals.Tax)
	assert.Equal(t, int64(27500), totals.GrandTotal)
}

func TestCalculateTotalsInvariant(t *testing.T) {
	cases := [][]PricedLine{
		{{ProductID: uuid.New(), UnitPrice: 1, Quantity: 1}},
		{{ProductID: uuid.New(), UnitPrice: 3, Quantity: 3}},
		{{ProductID: uuid.New(), UnitPrice: 17, Quantity: 7}, {ProductID: uuid.New(), UnitPrice: 333, Quantity: 2}},
		{{ProductID: uuid.New(), UnitPrice: 99999, Quantity: 13}},
		{{ProductID: uuid.New(), UnitPrice: 0, Quantity: 5}},
	}

	for _, lines := range cases {
		totals, err := CalculateTotals(lines)
		require.NoError(t, err)

		var subTotal int64
		for _, line := range lines {
			subTotal += line.UnitPrice * int64(line.Quantity)
		}
		assert.Equal(t, subTotal, totals.SubTotal)
		assert.Equal(t, totals.SubTotal+totals.Tax, totals.GrandTotal)
	}
}

func TestCalculateTotalsEmpty(t *testing.T) {
	totals, err := CalculateTotals(nil)
	require.NoError(t, err)
	assert.Equal(t, Totals{}, totals)
}

func TestCalculateTotalsRejectsBadLines(t *testing.T) {
	_, err := CalculateTotals([]PricedLine{{ProductID: uuid.New(), UnitPrice: 100, Quantity: 0}})
	assert.ErrorIs(t, err, ErrQuantityInvalid)

	_, err = CalculateTotals([]PricedLine{{ProductID: uuid.New(), UnitPrice: -1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrPriceInvalid)
}

func TestResolveLines(t *testing.T) {
	known := models.Product{Name: "Nasi Goreng", Price: 30000}
	known.ID = uuid.New()
	catalog := map[uuid.UUID]models.Product{known.ID: known}

	priced, err := ResolveLines([]CartLineInput{{ProductID: known.ID, Quantity: 2}}, catalog)
	require.NoError(t, err)
	require.Len(t, priced, 1)
	assert.Equal(t, int64(30000), priced[0].UnitPrice)
	assert.Equal(t, 2, priced[0].Quantity)
}

func TestResolveLinesUnknownProduct(t *testing.T) {
	_, err := ResolveLines([]CartLineInput{{ProductID: uuid.New(), Quantity: 1}}, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestResolveLinesInvalidQuantity(t *testing.T) {
	known := models.Product{Name: "Es Teh", Price: 5000}
	known.ID = uuid.New()
	catalog := map[uuid.UUID]models.Product{known.ID: known}

	_, err := ResolveLines([]CartLineInput{{ProductID: known.ID, Quantity: 0}}, catalog)
	assert.ErrorIs(t, err, ErrQuantityInvalid)
}
