// Package checkout turns a customer's cart into an order in a single
// transaction, redeeming at most one promo code along the way.
package checkout

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"restaurant-be/internal/cart"
	"restaurant-be/internal/customer"
	"restaurant-be/internal/db"
	"restaurant-be/internal/events"
	"restaurant-be/internal/logger"
	"restaurant-be/internal/metrics"
	"restaurant-be/internal/order"
	"restaurant-be/internal/promo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartStore is the part of the cart repository checkout drives on its
// transaction.
type CartStore interface {
	LockCart(ctx context.Context, q db.Querier, customerID uuid.UUID) (*cart.Cart, error)
	GetLines(ctx context.Context, q db.Querier, cartID int64) ([]cart.Line, error)
	ClearLines(ctx context.Context, q db.Querier, cartID int64) (int64, error)
}

type OrderWriter interface {
	Insert(ctx context.Context, q db.Querier, o *order.Order) error
}

type Result struct {
	Order        order.OrderView `json:"order"`
	PromoApplied bool            `json:"promo_applied"`
	State        State           `json:"state"`
}

type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, contact ContactInfo, promoCode string) (*Result, error)
}

type Deps struct {
	DB        *sql.DB
	Carts     CartStore
	Orders    OrderWriter
	Ledger    promo.Ledger
	Customers customer.Resolver
	Events    events.Publisher
	Metrics   *metrics.Registry
	Now       func() time.Time
}

type service struct {
	runner    *db.TxRunner
	carts     CartStore
	orders    OrderWriter
	ledger    promo.Ledger
	customers customer.Resolver
	events    events.Publisher
	metrics   *metrics.Registry
	now       func() time.Time
}

func NewService(d Deps) Service {
	s := &service{
		runner:    db.NewTxRunner(d.DB),
		carts:     d.Carts,
		orders:    d.Orders,
		ledger:    d.Ledger,
		customers: d.Customers,
		events:    d.Events,
		metrics:   d.Metrics,
		now:       d.Now,
	}
	if s.events == nil {
		s.events = events.NoopPublisher{}
	}
	if s.metrics == nil {
		s.metrics = metrics.NewRegistry()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.runner.OnRetry = func(int, error) {
		s.metrics.Counter(metrics.CheckoutRetries).Inc()
	}
	return s
}

// Checkout converts the customer's cart into an order. Cart lines are
// consumed, the promo code (if any, and if still redeemable) is used once,
// and the order is written, all in one transaction. An unknown or invalid
// promo code yields an undiscounted order rather than an error.
func (s *service) Checkout(
	ctx context.Context,
	customerID uuid.UUID,
	contact ContactInfo,
	promoCode string,
) (*Result, error) {

	log := logger.ForMethod(ctx, "service", "Checkout").With(
		zap.String("customer_id", customerID.String()),
		zap.Bool("has_promo", strings.TrimSpace(promoCode) != ""),
	)
	timer := metrics.StartTimer()
	m := newMachine(log)

	placed, applied, err := s.checkout(ctx, m, log, customerID, contact, promoCode)
	s.metrics.Histogram(metrics.CheckoutDuration).Observe(timer.Duration())
	if err != nil {
		s.metrics.Counter(metrics.CheckoutAborted).Inc()
		log.Warn("checkout aborted", zap.Error(err))
		return nil, m.abort(err)
	}

	if err := m.to(StateCommitted); err != nil {
		return nil, err
	}
	res := &Result{Order: order.ToView(placed), PromoApplied: applied, State: m.state}

	s.metrics.Counter(metrics.CheckoutCommitted).Inc()
	if res.PromoApplied {
		s.metrics.Counter(metrics.PromoConsumed).Inc()
	}

	log.Info("checkout committed",
		zap.Int64("order_id", res.Order.ID),
		zap.String("total", res.Order.Price),
		zap.Bool("promo_applied", res.PromoApplied),
	)

	s.publish(ctx, log, placed)
	return res, nil
}

func (s *service) checkout(
	ctx context.Context,
	m *machine,
	log *zap.Logger,
	customerID uuid.UUID,
	contact ContactInfo,
	promoCode string,
) (*order.Order, bool, error) {

	err := customer.Require(ctx, s.customers, customerID)
	switch {
	case errors.Is(err, customer.ErrNotAuthenticated):
		return nil, false, ErrNotAuthenticated
	case errors.Is(err, customer.ErrInvalidCustomer):
		return nil, false, ErrInvalidCustomer
	case err != nil:
		return nil, false, err
	}

	contact = contact.Normalize()
	if err := contact.Validate(); err != nil {
		return nil, false, err
	}

	if err := m.to(StateValidating); err != nil {
		return nil, false, err
	}

	var (
		placed  *order.Order
		applied bool
	)
	err = s.runner.Run(ctx, func(tx *sql.Tx) error {
		placed, applied = nil, false

		c, err := s.carts.LockCart(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if c == nil {
			return ErrCartMissing
		}

		lines, err := s.carts.GetLines(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		redeemed, err := s.redeem(ctx, tx, log, promoCode)
		if err != nil {
			return err
		}

		o := buildOrder(customerID, contact, s.now().UTC(), lines, redeemed)
		if err := s.orders.Insert(ctx, tx, o); err != nil {
			return err
		}

		if _, err := s.carts.ClearLines(ctx, tx, c.ID); err != nil {
			return err
		}

		placed, applied = o, redeemed != nil
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return placed, applied, nil
}

// redeem consumes code on tx when it is known and valid. A nil result with
// a nil error means no discount.
func (s *service) redeem(ctx context.Context, tx *sql.Tx, log *zap.Logger, code string) (*promo.PromoCode, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil
	}

	p, err := s.ledger.FindByCode(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if p == nil {
		log.Info("unknown promo code ignored")
		return nil, nil
	}

	ok, err := s.ledger.IsValid(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		log.Info("invalid promo code ignored", zap.Int64("promo_id", p.ID))
		return nil, nil
	}

	consumed, applied, err := s.ledger.Consume(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		log.Info("promo code lost to a concurrent checkout", zap.Int64("promo_id", p.ID))
		return nil, nil
	}
	return consumed, nil
}

func buildOrder(
	customerID uuid.UUID,
	contact ContactInfo,
	now time.Time,
	lines []cart.Line,
	redeemed *promo.PromoCode,
) *order.Order {

	o := &order.Order{
		CustomerID:  customerID,
		FirstName:   contact.FirstName,
		LastName:    contact.LastName,
		PhoneNumber: contact.PhoneNumber,
		Address:     contact.Address,
		CreatedAt:   now,
		Lines:       make([]order.Line, 0, len(lines)),
	}

	for _, l := range lines {
		o.Lines = append(o.Lines, order.Line{
			DishID:    l.DishID,
			DishName:  l.DishName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	total := Total(o.Lines)
	if redeemed != nil {
		id := redeemed.ID
		o.PromoCodeID = &id
		o.PromoCode = redeemed.Code
		total = ApplyDiscount(total, redeemed.DiscountPercent)
	}
	o.TotalPrice = total

	return o
}

func Total(lines []order.Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// ApplyDiscount subtracts percent of total and rounds to cents.
func ApplyDiscount(total decimal.Decimal, percent int) decimal.Decimal {
	discount := total.Mul(decimal.NewFromInt(int64(percent))).Div(decimal.NewFromInt(100))
	return total.Sub(discount).Round(2)
}

func (s *service) publish(ctx context.Context, log *zap.Logger, o *order.Order) {
	msg := events.OrderPlaced{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID.String(),
		TotalPrice:  o.TotalPrice.StringFixed(2),
		PromoCodeID: o.PromoCodeID,
		LineCount:   len(o.Lines),
		PlacedAt:    o.CreatedAt,
	}
	if err := s.events.PublishOrderPlaced(ctx, msg); err != nil {
		log.Warn("order.placed not published", zap.Int64("order_id", o.ID), zap.Error(err))
	}
}
