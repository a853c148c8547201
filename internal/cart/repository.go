package cart

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Repository persists carts and cart lines. Methods taking a db.Querier
// run on the caller's transaction.
type Repository interface {
	EnsureCart(ctx context.Context, customerID uuid.UUID) (int64, error)
	GetCartByCustomer(ctx context.Context, customerID uuid.UUID) (*Cart, error)
	LockCart(ctx context.Context, q db.Querier, customerID uuid.UUID) (*Cart, error)
	UpsertLine(ctx context.Context, cartID, dishID int64, quantity int, unitPrice decimal.Decimal) (*Line, error)
	RemoveOne(ctx context.Context, cartID, dishID int64) error
	GetLines(ctx context.Context, q db.Querier, cartID int64) ([]Line, error)
	ClearLines(ctx context.Context, q db.Querier, cartID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// EnsureCart returns the customer's live cart, creating it on first use.
// Concurrent callers converge on the same row through the partial unique
// index on carts(customer_id).
func (r *repository) EnsureCart(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
	INSERT INTO carts (customer_id)
	VALUES ($1)
	ON CONFLICT (customer_id) WHERE is_deleted = FALSE
	DO UPDATE SET customer_id = EXCLUDED.customer_id
	RETURNING id`, customerID).Scan(&id)
	if err != nil {
		logger.ForMethod(ctx, "repository", "EnsureCart").
			Error("failed to ensure cart", zap.String("customer_id", customerID.String()), zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *repository) findCart(ctx context.Context, q db.Querier, customerID uuid.UUID, forUpdate bool) (*Cart, error) {
	query := `
	SELECT id, customer_id, created_at
	FROM carts
	WHERE customer_id = $1 AND ` + db.NotDeleted("")
	if forUpdate {
		query += `
	FOR UPDATE`
	}

	var c Cart
	err := q.QueryRowContext(ctx, query, customerID).Scan(&c.ID, &c.CustomerID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCartByCustomer returns nil, nil when the customer has no cart yet.
func (r *repository) GetCartByCustomer(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	c, err := r.findCart(ctx, r.db, customerID, false)
	if err != nil || c == nil {
		return c, err
	}

	c.Lines, err = r.GetLines(ctx, r.db, c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LockCart takes the row lock on the customer's cart for the rest of q's
// transaction.
func (r *repository) LockCart(ctx context.Context, q db.Querier, customerID uuid.UUID) (*Cart, error) {
	return r.findCart(ctx, q, customerID, true)
}

// UpsertLine adds quantity to an existing line in one statement. The unit
// price is only written when the line is created. An add that would push
// the line past MaxLineQuantity updates nothing and returns
// ErrInvalidQuantity.
func (r *repository) UpsertLine(
	ctx context.Context,
	cartID, dishID int64,
	quantity int,
	unitPrice decimal.Decimal,
) (*Line, error) {

	log := logger.ForMethod(ctx, "repository", "UpsertLine").With(
		zap.Int64("cart_id", cartID),
		zap.Int64("dish_id", dishID),
		zap.Int("quantity", quantity),
	)

	line := &Line{}
	err := r.db.QueryRowContext(ctx, `
	INSERT INTO cart_lines (cart_id, dish_id, quantity, unit_price)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (cart_id, dish_id)
	DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
	WHERE cart_lines.quantity + EXCLUDED.quantity <= $5
	RETURNING cart_id, dish_id, quantity, unit_price`,
		cartID,
		dishID,
		quantity,
		unitPrice,
		MaxLineQuantity,
	).Scan(&line.CartID, &line.DishID, &line.Quantity, &line.UnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("cart line quantity limit reached")
		return nil, ErrInvalidQuantity
	}
	if err != nil {
		log.Error("failed to upsert cart line", zap.Error(err))
		return nil, err
	}

	log.Info("cart line upserted", zap.Int("new_quantity", line.Quantity))
	return line, nil
}

// RemoveOne decrements a line by one, deleting it when it held a single
// unit. The line is locked for the duration.
func (r *repository) RemoveOne(ctx context.Context, cartID, dishID int64) error {
	log := logger.ForMethod(ctx, "repository", "RemoveOne").With(
		zap.Int64("cart_id", cartID),
		zap.Int64("dish_id", dishID),
	)

	return db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var qty int
		err := tx.QueryRowContext(ctx, `
		SELECT quantity
		FROM cart_lines
		WHERE cart_id = $1 AND dish_id = $2
		FOR UPDATE`, cartID, dishID).Scan(&qty)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLineNotFound
		}
		if err != nil {
			return err
		}

		if qty <= 1 {
			_, err = tx.ExecContext(ctx, `
			DELETE FROM cart_lines
			WHERE cart_id = $1 AND dish_id = $2`, cartID, dishID)
		} else {
			_, err = tx.ExecContext(ctx, `
			UPDATE cart_lines
			SET quantity = quantity - 1
			WHERE cart_id = $1 AND dish_id = $2`, cartID, dishID)
		}
		if err != nil {
			log.Error("failed to remove cart line", zap.Error(err))
			return err
		}

		log.Info("cart line decremented", zap.Int("previous_quantity", qty))
		return nil
	})
}

func (r *repository) GetLines(ctx context.Context, q db.Querier, cartID int64) ([]Line, error) {
	log := logger.ForMethod(ctx, "repository", "GetLines").With(zap.Int64("cart_id", cartID))
	start := time.Now()

	rows, err := q.QueryContext(ctx, `
	SELECT cl.cart_id, cl.dish_id, d.name, cl.quantity, cl.unit_price
	FROM cart_lines cl
	JOIN dishes d ON d.id = cl.dish_id
	WHERE cl.cart_id = $1
	ORDER BY cl.dish_id ASC`, cartID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.CartID, &l.DishID, &l.DishName, &l.Quantity, &l.UnitPrice); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(lines)),
		zap.Duration("duration", time.Since(start)),
	)
	return lines, nil
}

func (r *repository) ClearLines(ctx context.Context, q db.Querier, cartID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
