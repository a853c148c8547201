package catalog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"
	"restaurant-be/internal/query"

	"go.uber.org/zap"
)

type Repository interface {
	GetDish(ctx context.Context, dishID int64) (*Dish, error)
	MenuExists(ctx context.Context, menuID int64) (bool, error)
	ListMenuDishes(ctx context.Context, menuID int64, params query.Params) ([]Dish, error)
	CountMenuDishes(ctx context.Context, menuID int64) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// GetDish returns nil, nil when the dish does not exist or was soft-deleted.
func (r *repository) GetDish(ctx context.Context, dishID int64) (*Dish, error) {
	query := `
	SELECT id, menu_id, name, description, image_url, price
	FROM dishes
	WHERE id = $1 AND ` + db.NotDeleted("")

	var d Dish
	err := r.db.QueryRowContext(ctx, query, dishID).Scan(
		&d.ID,
		&d.MenuID,
		&d.Name,
		&d.Description,
		&d.ImageURL,
		&d.Price,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func (r *repository) MenuExists(ctx context.Context, menuID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
	SELECT EXISTS(
		SELECT 1 FROM menus WHERE id = $1 AND `+db.NotDeleted("")+`
	)`, menuID).Scan(&exists)
	return exists, err
}

func (r *repository) ListMenuDishes(
	ctx context.Context,
	menuID int64,
	params query.Params,
) ([]Dish, error) {

	params = params.Normalize()
	log := logger.ForMethod(ctx, "repository", "ListMenuDishes").With(
		zap.Int64("menu_id", menuID),
		zap.Stringer("sorting", params.Sorting),
		zap.Int("page", params.Page),
		zap.Int("page_size", params.PageSize),
	)
	start := time.Now()

	orderBy := "d.id ASC"
	switch params.Sorting {
	case query.PriceAscending:
		orderBy = "d.price ASC, d.id ASC"
	case query.PriceDescending:
		orderBy = "d.price DESC, d.id ASC"
	}

	q := `
	SELECT d.id, d.menu_id, d.name, d.description, d.image_url, d.price
	FROM dishes d
	WHERE d.menu_id = $1 AND ` + db.NotDeleted("d") + `
	ORDER BY ` + orderBy + `
	LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, q, menuID, params.Limit(), params.Offset())
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	dishes := make([]Dish, 0, params.PageSize)
	for rows.Next() {
		var d Dish
		if err := rows.Scan(&d.ID, &d.MenuID, &d.Name, &d.Description, &d.ImageURL, &d.Price); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		dishes = append(dishes, d)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}

	log.Debug("query success",
		zap.Int("rows", len(dishes)),
		zap.Duration("duration", time.Since(start)),
	)

	return dishes, nil
}

func (r *repository) CountMenuDishes(ctx context.Context, menuID int64) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*)
	FROM dishes d
	WHERE d.menu_id = $1 AND `+db.NotDeleted("d"), menuID).Scan(&total)
	return total, err
}
