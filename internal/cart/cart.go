package cart

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by the cart store.
var (
	ErrInvalidQuantity = errors.New("quantity must be >= 1")
	ErrNameRequired    = errors.New("item name is required")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// Line is one entry in the in-progress order. Quantity is fixed at creation;
// a changed quantity is a new line. Price always equals
// PricePerQuantity × Quantity.
type Line struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	PricePerQuantity decimal.Decimal `json:"pricePerQuantity"`
	Quantity         int32           `json:"quantity"`
	Price            decimal.Decimal `json:"price"`
}

// Cart is the ordered list of lines for the current checkout. Lines are
// append/remove only; there is no merge-by-identity, so adding the same dish
// twice creates two separate lines.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddLine appends a new line with a fresh time-ordered id. The line's Price
// is computed here and never mutated afterwards.
func (c *Cart) AddLine(name string, pricePerQuantity decimal.Decimal, quantity int32) (Line, error) {
	if name == "" {
		return Line{}, ErrNameRequired
	}
	if pricePerQuantity.IsNegative() {
		return Line{}, ErrInvalidPrice
	}
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}

	line := Line{
		ID:               newLineID(),
		Name:             name,
		PricePerQuantity: pricePerQuantity,
		Quantity:         quantity,
		Price:            pricePerQuantity.Mul(decimal.NewFromInt32(quantity)),
	}

	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()
	return line, nil
}

// RemoveLine removes the line with the given id. Removing an absent id is a
// no-op.
func (c *Cart) RemoveLine(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, line := range c.lines {
		if line.ID == id {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart. Safe to call repeatedly.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total sums the line prices. Recomputed on every read so it can never
// drift from the line list.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Price)
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// newLineID generates a client-side line id. V7 UUIDs are time-ordered, so
// ids sort in creation order like the original time-based ids.
func newLineID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
