// Package customer resolves customer ids issued by the identity provider
// to rows in the customers table. Accounts are managed elsewhere; only
// existence is read here.
package customer

import (
	"context"
	"database/sql"

	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Resolver interface {
	Exists(ctx context.Context, customerID uuid.UUID) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Resolver {
	return &repository{db: db}
}

func (r *repository) Exists(ctx context.Context, customerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
	SELECT EXISTS(
		SELECT 1 FROM customers WHERE id = $1 AND `+db.NotDeleted("")+`
	)`, customerID).Scan(&exists)
	if err != nil {
		logger.ForMethod(ctx, "repository", "CustomerExists").
			Error("query failed", zap.String("customer_id", customerID.String()), zap.Error(err))
		return false, err
	}
	return exists, nil
}

// Require maps an explicit caller identity to ErrNotAuthenticated when
// missing and ErrInvalidCustomer when it does not resolve.
func Require(ctx context.Context, r Resolver, customerID uuid.UUID) error {
	if customerID == uuid.Nil {
		return ErrNotAuthenticated
	}
	ok, err := r.Exists(ctx, customerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCustomer
	}
	return nil
}
