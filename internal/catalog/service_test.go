package catalog

import (
	"context"
	"errors"
	"testing"

	"restaurant-be/internal/query"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetDish(ctx context.Context, dishID int64) (*Dish, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Dish), args.Error(1)
}

func (m *MockRepository) MenuExists(ctx context.Context, menuID int64) (bool, error) {
	args := m.Called(ctx, menuID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListMenuDishes(ctx context.Context, menuID int64, params query.Params) ([]Dish, error) {
	args := m.Called(ctx, menuID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Dish), args.Error(1)
}

func (m *MockRepository) CountMenuDishes(ctx context.Context, menuID int64) (int, error) {
	args := m.Called(ctx, menuID)
	return args.Int(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, dishID int64) (*Dish, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Dish), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, dish *Dish) error {
	return m.Called(ctx, dish).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, dishID int64) error {
	return m.Called(ctx, dishID).Error(0)
}

func TestService_ResolveDish(t *testing.T) {
	ctx := context.Background()
	dish := &Dish{ID: 1, Name: "Soup", Price: decimal.NewFromInt(10)}

	t.Run("ReadsRepositoryAndRefreshesCache", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		repo.On("GetDish", ctx, int64(1)).Return(dish, nil).Once()
		cache.On("Set", ctx, dish).Return(nil).Once()

		got, err := NewService(repo, cache).ResolveDish(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, dish, got)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("CachedEntryNotTrusted", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		stale := &Dish{ID: 1, Name: "Soup", Price: decimal.NewFromInt(4)}
		cache.On("Get", ctx, int64(1)).Return(stale, nil).Maybe()
		repo.On("GetDish", ctx, int64(1)).Return(dish, nil).Once()
		cache.On("Set", ctx, dish).Return(nil).Once()

		got, err := NewService(repo, cache).ResolveDish(ctx, 1)
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(decimal.NewFromInt(10)))
	})

	t.Run("DeletedDishInvalidatesCache", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		repo.On("GetDish", ctx, int64(2)).Return(nil, nil).Once()
		cache.On("Invalidate", ctx, int64(2)).Return(nil).Once()

		_, err := NewService(repo, cache).ResolveDish(ctx, 2)
		assert.ErrorIs(t, err, ErrDishNotFound)
		cache.AssertExpectations(t)
	})

	t.Run("CacheErrorsIgnored", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		repo.On("GetDish", ctx, int64(1)).Return(dish, nil).Once()
		cache.On("Set", ctx, dish).Return(errors.New("redis down")).Once()

		got, err := NewService(repo, cache).ResolveDish(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, dish, got)

		repo.On("GetDish", ctx, int64(2)).Return(nil, nil).Once()
		cache.On("Invalidate", ctx, int64(2)).Return(errors.New("redis down")).Once()

		_, err = NewService(repo, cache).ResolveDish(ctx, 2)
		assert.ErrorIs(t, err, ErrDishNotFound)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDish", ctx, int64(2)).Return(nil, nil).Once()

		_, err := NewService(repo, nil).ResolveDish(ctx, 2)
		assert.ErrorIs(t, err, ErrDishNotFound)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDish", ctx, int64(3)).Return(nil, errors.New("db error")).Once()

		_, err := NewService(repo, nil).ResolveDish(ctx, 3)
		assert.EqualError(t, err, "db error")
	})
}

func TestService_GetDish(t *testing.T) {
	ctx := context.Background()
	dish := &Dish{ID: 1, Name: "Soup", Price: decimal.NewFromInt(10)}

	t.Run("CacheHit", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", ctx, int64(1)).Return(dish, nil).Once()

		got, err := NewService(repo, cache).GetDish(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, dish, got)
		repo.AssertNotCalled(t, "GetDish", mock.Anything, mock.Anything)
	})

	t.Run("CacheMissFillsCache", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", ctx, int64(1)).Return(nil, nil).Once()
		repo.On("GetDish", ctx, int64(1)).Return(dish, nil).Once()
		cache.On("Set", ctx, dish).Return(nil).Once()

		got, err := NewService(repo, cache).GetDish(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, dish, got)
		cache.AssertExpectations(t)
	})

	t.Run("CacheErrorFallsBackToRepository", func(t *testing.T) {
		repo := new(MockRepository)
		cache := new(MockCache)
		cache.On("Get", ctx, int64(1)).Return(nil, errors.New("redis down")).Once()
		repo.On("GetDish", ctx, int64(1)).Return(dish, nil).Once()
		cache.On("Set", ctx, dish).Return(errors.New("redis down")).Once()

		got, err := NewService(repo, cache).GetDish(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, dish, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetDish", ctx, int64(2)).Return(nil, nil).Once()

		_, err := NewService(repo, nil).GetDish(ctx, 2)
		assert.ErrorIs(t, err, ErrDishNotFound)
	})
}

func TestService_ListMenuDishes(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		params := query.Params{Sorting: query.PriceAscending, Page: 1, PageSize: 3}
		dishes := []Dish{{ID: 1}, {ID: 2}, {ID: 3}}

		repo.On("MenuExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("ListMenuDishes", ctx, int64(5), params).Return(dishes, nil).Once()
		repo.On("CountMenuDishes", ctx, int64(5)).Return(7, nil).Once()

		page, err := NewService(repo, nil).ListMenuDishes(ctx, 5, params)
		require.NoError(t, err)
		assert.Len(t, page.Dishes, 3)
		assert.Equal(t, 7, page.Total)
	})

	t.Run("NormalizesParams", func(t *testing.T) {
		repo := new(MockRepository)
		normalized := query.Params{Page: 1, PageSize: query.DefaultPageSize}

		repo.On("MenuExists", ctx, int64(5)).Return(true, nil).Once()
		repo.On("ListMenuDishes", ctx, int64(5), normalized).Return([]Dish{}, nil).Once()
		repo.On("CountMenuDishes", ctx, int64(5)).Return(0, nil).Once()

		page, err := NewService(repo, nil).ListMenuDishes(ctx, 5, query.Params{})
		require.NoError(t, err)
		assert.Empty(t, page.Dishes)
		repo.AssertExpectations(t)
	})

	t.Run("MenuNotFound", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("MenuExists", ctx, int64(9)).Return(false, nil).Once()

		_, err := NewService(repo, nil).ListMenuDishes(ctx, 9, query.Params{})
		assert.ErrorIs(t, err, ErrMenuNotFound)
	})
}
