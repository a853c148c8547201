package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID          int64
	CustomerID  uuid.UUID
	FirstName   string
	LastName    string
	PhoneNumber string
	Address     string
	CreatedAt   time.Time
	TotalPrice  decimal.Decimal
	Completed   bool
	PromoCodeID *int64
	// PromoCode is the joined code string, empty when no promo was used.
	PromoCode string
	IsDeleted bool
	Lines     []Line
}

// Line is frozen at checkout and never changes afterwards.
type Line struct {
	OrderID   int64
	DishID    int64
	DishName  string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Scope selects whose orders a query sees. Staff sees every live order;
// otherwise only CustomerID's.
type Scope struct {
	CustomerID uuid.UUID
	Staff      bool
}

type OrderFilter struct {
	CustomerID *uuid.UUID
	Completed  *bool
}
