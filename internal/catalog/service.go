package catalog

import (
	"context"

	"restaurant-be/internal/logger"
	"restaurant-be/internal/query"

	"go.uber.org/zap"
)

// Lookup is the read-only view of the catalog used by the cart.
type Lookup interface {
	ResolveDish(ctx context.Context, dishID int64) (*Dish, error)
}

type Service interface {
	Lookup
	GetDish(ctx context.Context, dishID int64) (*Dish, error)
	ListMenuDishes(ctx context.Context, menuID int64, params query.Params) (*DishPage, error)
}

type service struct {
	repo  Repository
	cache DishCache
}

// NewService builds the catalog service. cache may be nil.
func NewService(repo Repository, cache DishCache) Service {
	return &service{repo: repo, cache: cache}
}

// ResolveDish always reads the repository so a deleted or repriced dish is
// never added from a stale cache entry. The cache is refreshed on the way out.
func (s *service) ResolveDish(ctx context.Context, dishID int64) (*Dish, error) {
	log := logger.ForMethod(ctx, "service", "ResolveDish").With(zap.Int64("dish_id", dishID))

	dish, err := s.repo.GetDish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if dish == nil {
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, dishID); err != nil {
				log.Warn("dish cache invalidate failed", zap.Error(err))
			}
		}
		return nil, ErrDishNotFound
	}

	s.remember(ctx, log, dish)
	return dish, nil
}

// GetDish serves reads from the cache when it can. Entries may lag the
// repository by up to the cache TTL.
func (s *service) GetDish(ctx context.Context, dishID int64) (*Dish, error) {
	log := logger.ForMethod(ctx, "service", "GetDish").With(zap.Int64("dish_id", dishID))

	if s.cache != nil {
		dish, err := s.cache.Get(ctx, dishID)
		if err != nil {
			log.Warn("dish cache read failed", zap.Error(err))
		} else if dish != nil {
			return dish, nil
		}
	}

	dish, err := s.repo.GetDish(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if dish == nil {
		return nil, ErrDishNotFound
	}

	s.remember(ctx, log, dish)
	return dish, nil
}

func (s *service) remember(ctx context.Context, log *zap.Logger, dish *Dish) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, dish); err != nil {
		log.Warn("dish cache write failed", zap.Error(err))
	}
}

func (s *service) ListMenuDishes(
	ctx context.Context,
	menuID int64,
	params query.Params,
) (*DishPage, error) {

	exists, err := s.repo.MenuExists(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrMenuNotFound
	}

	params = params.Normalize()

	dishes, err := s.repo.ListMenuDishes(ctx, menuID, params)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountMenuDishes(ctx, menuID)
	if err != nil {
		return nil, err
	}

	return &DishPage{Dishes: dishes, Total: total}, nil
}
