package cart

import (
	"github.com/shopspring/decimal"
)

// Line is one product's presence in the cart. Name, UnitPrice and
// StockQuantity are a snapshot of the catalog taken when the line was
// first added; they are not re-synced afterwards. StockQuantity is
// advisory only, the ledger never enforces it as a ceiling.
type Line struct {
	ProductID     int64           `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
	Quantity      int             `json:"quantity"`
}

// Cart holds at most one line per product id, in insertion order.
// The zero value is an empty cart. All transitions return a new value
// backed by a fresh slice, the receiver is never mutated.
type Cart struct {
	Lines []Line `json:"items"`
}

type Totals struct {
	TotalItems int             `json:"totalItems"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

func (c Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Add merges qty into an existing line for the same product, keeping
// the original snapshot, or appends a new line. qty must be >= 1; the
// caller validates, the ledger does not.
func (c Cart) Add(p Line, qty int) Cart {
	lines := make([]Line, len(c.Lines), len(c.Lines)+1)
	copy(lines, c.Lines)

	for i := range lines {
		if lines[i].ProductID == p.ProductID {
			lines[i].Quantity += qty
			return Cart{Lines: lines}
		}
	}

	p.Quantity = qty
	return Cart{Lines: append(lines, p)}
}

// Remove drops the line for productID. Removing an absent product is a
// no-op, not an error.
func (c Cart) Remove(productID int64) Cart {
	lines := make([]Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		if l.ProductID != productID {
			lines = append(lines, l)
		}
	}
	return Cart{Lines: lines}
}

// SetQuantity sets the quantity of the matching line, clamped at 1.
// It never removes a line, removal goes through Remove. Absent product
// is a no-op.
func (c Cart) SetQuantity(productID int64, qty int) Cart {
	if qty < 1 {
		qty = 1
	}

	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	for i := range lines {
		if lines[i].ProductID == productID {
			lines[i].Quantity = qty
		}
	}
	return Cart{Lines: lines}
}

func (c Cart) Clear() Cart {
	return Cart{}
}

// Totals projects the derived facts of the cart. Accumulation stays in
// exact decimals, rounding to two places happens at the presentation
// edge only.
func (c Cart) Totals() Totals {
	t := Totals{TotalPrice: decimal.Zero}
	for _, l := range c.Lines {
		t.TotalItems += l.Quantity
		t.TotalPrice = t.TotalPrice.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return t
}
