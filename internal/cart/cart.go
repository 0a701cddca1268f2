// internal/cart/cart.go
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zapcatalog/zapcatalog-backend/internal/models"
)

// Cart is the session-local quantity map a shopper builds against one
// company's catalog. It performs no I/O and is not persisted; checkout
// hands its lines to the order engine, which re-validates everything.
type Cart struct {
	quantities map[uuid.UUID]int
}

// Line is a derived cart row. Subtotal is always Quantity x UnitPrice.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func New() *Cart {
	return &Cart{quantities: make(map[uuid.UUID]int)}
}

func (c *Cart) Quantity(productID uuid.UUID) int {
	return c.quantities[productID]
}

func (c *Cart) IsEmpty() bool {
	return len(c.quantities) == 0
}

func (c *Cart) Clear() {
	c.quantities = make(map[uuid.UUID]int)
}

// Increment adds one unit, clamped by the product's availability.
// With zero stock the increment is refused and the quantity stays 0.
func (c *Cart) Increment(product *models.Product) int {
	avail := product.Availability()
	next := avail.Clamp(c.quantities[product.ID] + 1)
	c.set(product.ID, next)
	return next
}

// Decrement removes one unit, never going below zero. A zero quantity
// drops the entry entirely.
func (c *Cart) Decrement(productID uuid.UUID) int {
	next := c.quantities[productID] - 1
	if next < 0 {
		next = 0
	}
	c.set(productID, next)
	return next
}

// Set puts the quantity to exactly qty, clamped to the purchasable range.
func (c *Cart) Set(product *models.Product, qty int) int {
	next := product.Availability().Clamp(qty)
	c.set(product.ID, next)
	return next
}

func (c *Cart) set(productID uuid.UUID, qty int) {
	if qty <= 0 {
		delete(c.quantities, productID)
		return
	}
	c.quantities[productID] = qty
}

// Quantities returns a copy of the product -> quantity mapping, the shape
// the order-creation request wants.
func (c *Cart) Quantities() map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(c.quantities))
	for id, qty := range c.quantities {
		out[id] = qty
	}
	return out
}

// Lines derives the line items and grand total against the given catalog
// slice, preserving catalog order and skipping zero-quantity entries.
func (c *Cart) Lines(products []models.Product) ([]Line, decimal.Decimal) {
	lines := make([]Line, 0, len(c.quantities))
	total := decimal.Zero

	for i := range products {
		p := &products[i]
		qty := c.quantities[p.ID]
		if qty <= 0 {
			continue
		}

		subtotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, Line{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			UnitPrice: p.Price,
			Subtotal:  subtotal,
		})
		total = total.Add(subtotal)
	}

	return lines, total
}
