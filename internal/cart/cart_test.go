// internal/cart/cart_test.go
package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

func product(name, price string, stock int) models.Product {
	p := models.Product{
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
		Active: true,
	}
	p.ID = uuid.New()
	return p
}

func TestIncrementClampsToStock(t *testing.T) {
	p := product("Snack", "10.00", 2)
	c := New()

	assert.Equal(t, 1, c.Increment(&p))
	assert.Equal(t, 2, c.Increment(&p))

	// Third increment is clamped at the stock limit.
	assert.Equal(t, 2, c.Increment(&p))
	assert.Equal(t, 2, c.Quantity(p.ID))
}

func TestIncrementRefusedOnZeroStock(t *testing.T) {
	p := product("Gone", "5.00", 0)
	c := New()

	assert.Equal(t, 0, c.Increment(&p))
	assert.True(t, c.IsEmpty())
}

func TestIncrementUnboundedOnUnlimitedStock(t *testing.T) {
	p := product("Water", "2.50", models.StockUnlimited)
	c := New()

	for i := 0; i < 250; i++ {
		c.Increment(&p)
	}
	assert.Equal(t, 250, c.Quantity(p.ID))
}

func TestDecrementFloorsAtZero(t *testing.T) {
	p := product("Snack", "10.00", 5)
	c := New()

	c.Increment(&p)
	assert.Equal(t, 0, c.Decrement(p.ID))
	assert.Equal(t, 0, c.Decrement(p.ID))
	assert.True(t, c.IsEmpty())
}

func TestSetClampsToAvailability(t *testing.T) {
	p := product("Snack", "10.00", 3)
	c := New()

	assert.Equal(t, 3, c.Set(&p, 10))
	assert.Equal(t, 0, c.Set(&p, -4))
	assert.True(t, c.IsEmpty())
}

func TestLinesComputeSubtotalsAndTotal(t *testing.T) {
	a := product("Snack", "10.00", 10)
	b := product("Water", "2.50", models.StockUnlimited)
	skipped := product("Untouched", "99.00", 10)
	catalog := []models.Product{a, b, skipped}

	c := New()
	c.Set(&a, 2)
	c.Set(&b, 4)

	lines, total := c.Lines(catalog)

	assert.Len(t, lines, 2)
	assert.Equal(t, a.ID, lines[0].ProductID)
	assert.True(t, lines[0].Subtotal.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, b.ID, lines[1].ProductID)
	assert.True(t, lines[1].Subtotal.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, total.Equal(decimal.RequireFromString("30.00")), "total was %s", total)
}

func TestLinesEmptyCart(t *testing.T) {
	catalog := []models.Product{product("Snack", "10.00", 10)}

	lines, total := New().Lines(catalog)
	assert.Empty(t, lines)
	assert.True(t, total.IsZero())
}

func TestClearResetsEverything(t *testing.T) {
	p := product("Snack", "10.00", 10)
	c := New()
	c.Set(&p, 3)

	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.Quantity(p.ID))
}

func TestQuantitiesReturnsCopy(t *testing.T) {
	p := product("Snack", "10.00", 10)
	c := New()
	c.Set(&p, 2)

	snapshot := c.Quantities()
	snapshot[p.ID] = 99

	assert.Equal(t, 2, c.Quantity(p.ID))
}
