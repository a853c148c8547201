package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"restaurant-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	PgUniqueViolation      = "23505"
	PgSerializationFailure = "40001"
	PgDeadlockDetected     = "40P01"

	defaultMaxAttempts = 3
)

// ErrTransient is returned once a conflicting transaction has been retried
// and still could not commit.
var ErrTransient = errors.New("the request conflicted with another one, please try again")

// Querier is satisfied by *sql.DB and *sql.Tx so repositories can run
// either standalone or inside a caller's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxRunner runs a unit of work in a transaction and retries it when
// Postgres reports a serialization failure or a deadlock.
type TxRunner struct {
	DB          *sql.DB
	MaxAttempts int
	// OnRetry is called before every retry.
	OnRetry func(attempt int, err error)
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{DB: db, MaxAttempts: defaultMaxAttempts}
}

// WithTx runs fn in a single transaction without a custom retry hook.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	return NewTxRunner(db).Run(ctx, fn)
}

func (r *TxRunner) Run(ctx context.Context, fn func(tx *sql.Tx) error) error {
	log := logger.ForMethod(ctx, "db", "RunTx")

	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}

		log.Warn("transaction conflict",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < attempts && r.OnRetry != nil {
			r.OnRetry(attempt, err)
		}
	}

	return fmt.Errorf("%w: %v", ErrTransient, err)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx *sql.Tx) error) error {
	log := logger.ForMethod(ctx, "db", "RunTx")

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			} else {
				log.Debug("transaction rolled back")
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	return nil
}

// IsRetryable reports whether err is a Postgres conflict worth retrying.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == PgSerializationFailure || pqErr.Code == PgDeadlockDetected
}

func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == PgUniqueViolation
}
