package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"
	"restaurant-be/internal/query"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Insert(ctx context.Context, q db.Querier, o *Order) error
	FetchOrders(ctx context.Context, filter OrderFilter, params query.Params) ([]Order, error)
	CountOrders(ctx context.Context, filter OrderFilter) (int, error)
	FetchOrderLines(ctx context.Context, orderIDs []int64) (map[int64][]Line, error)
	GetByID(ctx context.Context, orderID int64) (*Order, error)
	ToggleCompleted(ctx context.Context, orderID int64) (*bool, error)
	SoftDelete(ctx context.Context, orderID int64) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT
		o.id,
		o.customer_id,
		o.first_name,
		o.last_name,
		o.phone_number,
		o.address,
		o.created_at,
		o.total_price,
		o.completed,
		o.promo_code_id,
		COALESCE(p.code, '')
	FROM orders o
	LEFT JOIN promo_codes p ON p.id = o.promo_code_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var (
		o       Order
		promoID sql.NullInt64
	)
	if err := s.Scan(
		&o.ID,
		&o.CustomerID,
		&o.FirstName,
		&o.LastName,
		&o.PhoneNumber,
		&o.Address,
		&o.CreatedAt,
		&o.TotalPrice,
		&o.Completed,
		&promoID,
		&o.PromoCode,
	); err != nil {
		return nil, err
	}
	if promoID.Valid {
		id := promoID.Int64
		o.PromoCodeID = &id
	}
	return &o, nil
}

// Insert writes the order header and its lines on q and sets o.ID.
func (r *repository) Insert(ctx context.Context, q db.Querier, o *Order) error {
	log := logger.ForMethod(ctx, "repository", "InsertOrder").With(
		zap.String("customer_id", o.CustomerID.String()),
		zap.Int("lines", len(o.Lines)),
	)

	var promoID any
	if o.PromoCodeID != nil {
		promoID = *o.PromoCodeID
	}

	err := q.QueryRowContext(ctx, `
	INSERT INTO orders (
		customer_id, first_name, last_name, phone_number, address,
		created_at, total_price, completed, promo_code_id, is_deleted
	) VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, FALSE)
	RETURNING id`,
		o.CustomerID,
		o.FirstName,
		o.LastName,
		o.PhoneNumber,
		o.Address,
		o.CreatedAt,
		o.TotalPrice,
		promoID,
	).Scan(&o.ID)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Lines {
		o.Lines[i].OrderID = o.ID
		l := o.Lines[i]
		if _, err := q.ExecContext(ctx, `
		INSERT INTO order_lines (order_id, dish_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`,
			l.OrderID,
			l.DishID,
			l.Quantity,
			l.UnitPrice,
		); err != nil {
			log.Error("failed to insert order line", zap.Int64("dish_id", l.DishID), zap.Error(err))
			return err
		}
	}

	log.Info("order inserted", zap.Int64("order_id", o.ID))
	return nil
}

// FilterFor turns a caller scope and sorting mode into the row predicate
// shared by FetchOrders and CountOrders.
func FilterFor(scope Scope, sorting query.Sorting) OrderFilter {
	var f OrderFilter
	if !scope.Staff {
		id := scope.CustomerID
		f.CustomerID = &id
	}
	switch sorting {
	case query.Pending:
		done := false
		f.Completed = &done
	case query.Delivered:
		done := true
		f.Completed = &done
	}
	return f
}

func buildWhere(filter OrderFilter) (string, []any) {
	where := []string{db.NotDeleted("o")}
	args := []any{}
	argIndex := 1

	if filter.CustomerID != nil {
		where = append(where, fmt.Sprintf("o.customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}
	if filter.Completed != nil {
		where = append(where, fmt.Sprintf("o.completed = $%d", argIndex))
		args = append(args, *filter.Completed)
	}

	return strings.Join(where, " AND "), args
}

func orderByFor(sorting query.Sorting) string {
	switch sorting {
	case query.Oldest:
		return "o.created_at ASC, o.id ASC"
	case query.PriceAscending:
		return "o.total_price ASC, o.id ASC"
	case query.PriceDescending:
		return "o.total_price DESC, o.id DESC"
	default:
		return "o.created_at DESC, o.id DESC"
	}
}

func (r *repository) FetchOrders(
	ctx context.Context,
	filter OrderFilter,
	params query.Params,
) ([]Order, error) {

	params = params.Normalize()
	log := logger.ForMethod(ctx, "repository", "FetchOrders").With(
		zap.Stringer("sorting", params.Sorting),
		zap.Int("page", params.Page),
		zap.Int("page_size", params.PageSize),
	)
	start := time.Now()

	where, args := buildWhere(filter)
	q := orderSelect + `
	WHERE ` + where + `
	ORDER BY ` + orderByFor(params.Sorting) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit(), params.Offset())

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := make([]Order, 0, params.PageSize)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(orders)),
		zap.Duration("duration", time.Since(start)),
	)
	return orders, nil
}

func (r *repository) CountOrders(ctx context.Context, filter OrderFilter) (int, error) {
	where, args := buildWhere(filter)

	var total int
	err := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*)
	FROM orders o
	WHERE `+where, args...).Scan(&total)
	return total, err
}

// FetchOrderLines loads the lines of many orders in one round trip.
func (r *repository) FetchOrderLines(ctx context.Context, orderIDs []int64) (map[int64][]Line, error) {
	result := make(map[int64][]Line, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT ol.order_id, ol.dish_id, d.name, ol.quantity, ol.unit_price
	FROM order_lines ol
	JOIN dishes d ON d.id = ol.dish_id
	WHERE ol.order_id = ANY($1)
	ORDER BY ol.order_id, ol.dish_id`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.OrderID, &l.DishID, &l.DishName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		result[l.OrderID] = append(result[l.OrderID], l)
	}
	return result, rows.Err()
}

// GetByID returns nil, nil for unknown or soft-deleted orders.
func (r *repository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+`
	WHERE o.id = $1 AND `+db.NotDeleted("o"), orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := r.FetchOrderLines(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Lines = lines[o.ID]
	return o, nil
}

// ToggleCompleted flips pending/delivered and returns the new state, or
// nil when the order does not exist.
func (r *repository) ToggleCompleted(ctx context.Context, orderID int64) (*bool, error) {
	var completed bool
	err := r.db.QueryRowContext(ctx, `
	UPDATE orders
	SET completed = NOT completed
	WHERE id = $1 AND `+db.NotDeleted("")+`
	RETURNING completed`, orderID).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.ForMethod(ctx, "repository", "ToggleCompleted").
			Error("failed to toggle order status", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, err
	}
	return &completed, nil
}

func (r *repository) SoftDelete(ctx context.Context, orderID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE orders
	SET is_deleted = TRUE
	WHERE id = $1 AND `+db.NotDeleted(""), orderID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

