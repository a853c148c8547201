package promo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"

	"go.uber.org/zap"
)

const promoColumns = `id, code, expiration_date, max_usage_count, used_count, discount_percent, is_deleted`

// Repository reads and writes promo_codes. Methods taking a db.Querier run
// on that transaction; a nil Querier uses the repository's own pool.
type Repository interface {
	FindByCode(ctx context.Context, q db.Querier, code string) (*PromoCode, error)
	GetByID(ctx context.Context, q db.Querier, id int64) (*PromoCode, error)
	Consume(ctx context.Context, q db.Querier, id int64, now time.Time) (*PromoCode, error)
	Create(ctx context.Context, p *PromoCode) error
	SoftDelete(ctx context.Context, id int64) (bool, error)
	ListActive(ctx context.Context) ([]PromoCode, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) querier(q db.Querier) db.Querier {
	if q != nil {
		return q
	}
	return r.db
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCode(s scanner) (*PromoCode, error) {
	var p PromoCode
	if err := s.Scan(
		&p.ID,
		&p.Code,
		&p.ExpirationDate,
		&p.MaxUsageCount,
		&p.UsedCount,
		&p.DiscountPercent,
		&p.IsDeleted,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByCode is a case-sensitive match among non-deleted codes.
func (r *repository) FindByCode(ctx context.Context, q db.Querier, code string) (*PromoCode, error) {
	p, err := scanCode(r.querier(q).QueryRowContext(ctx, `
	SELECT `+promoColumns+`
	FROM promo_codes
	WHERE code = $1 AND `+db.NotDeleted(""), code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *repository) GetByID(ctx context.Context, q db.Querier, id int64) (*PromoCode, error) {
	p, err := scanCode(r.querier(q).QueryRowContext(ctx, `
	SELECT `+promoColumns+`
	FROM promo_codes
	WHERE id = $1 AND `+db.NotDeleted(""), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// Consume increments used_count under the row lock and retires the code in
// the same statement when the last use is taken. It returns nil, nil when
// the code is expired, exhausted, deleted or unknown.
func (r *repository) Consume(ctx context.Context, q db.Querier, id int64, now time.Time) (*PromoCode, error) {
	log := logger.ForMethod(ctx, "repository", "ConsumePromo").With(zap.Int64("promo_id", id))

	p, err := scanCode(r.querier(q).QueryRowContext(ctx, `
	UPDATE promo_codes
	SET used_count = used_count + 1,
	    is_deleted = (used_count + 1 >= max_usage_count)
	WHERE id = $1
	  AND is_deleted = FALSE
	  AND expiration_date > $2
	  AND used_count < max_usage_count
	RETURNING `+promoColumns, id, now))
	if errors.Is(err, sql.ErrNoRows) {
		log.Info("promo code not consumable")
		return nil, nil
	}
	if err != nil {
		log.Error("consume failed", zap.Error(err))
		return nil, err
	}

	log.Info("promo code consumed",
		zap.Int("used_count", p.UsedCount),
		zap.Bool("retired", p.IsDeleted),
	)
	return p, nil
}

func (r *repository) Create(ctx context.Context, p *PromoCode) error {
	return r.db.QueryRowContext(ctx, `
	INSERT INTO promo_codes (code, expiration_date, max_usage_count, used_count, discount_percent, is_deleted)
	VALUES ($1, $2, $3, 0, $4, FALSE)
	RETURNING id`,
		p.Code,
		p.ExpirationDate,
		p.MaxUsageCount,
		p.DiscountPercent,
	).Scan(&p.ID)
}

func (r *repository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE promo_codes
	SET is_deleted = TRUE
	WHERE id = $1 AND `+db.NotDeleted(""), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) ListActive(ctx context.Context) ([]PromoCode, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT `+promoColumns+`
	FROM promo_codes
	WHERE `+db.NotDeleted("")+`
	ORDER BY expiration_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []PromoCode
	for rows.Next() {
		p, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, *p)
	}
	return codes, rows.Err()
}
