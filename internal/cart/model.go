package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the units of one dish in a cart.
const MaxLineQuantity = 99

type Cart struct {
	ID         int64
	CustomerID uuid.UUID
	CreatedAt  time.Time
	Lines      []Line
}

// Line is one dish in a cart. UnitPrice is the dish price captured when
// the line was first added.
type Line struct {
	CartID    int64
	DishID    int64
	DishName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}
