package cart

import (
	"context"
	"errors"
	"math"
	"testing"

	"restaurant-be/internal/catalog"
	"restaurant-be/internal/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) EnsureCart(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetCartByCustomer(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) LockCart(ctx context.Context, q db.Querier, customerID uuid.UUID) (*Cart, error) {
	args := m.Called(ctx, q, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Cart), args.Error(1)
}

func (m *MockRepository) UpsertLine(ctx context.Context, cartID, dishID int64, quantity int, unitPrice decimal.Decimal) (*Line, error) {
	args := m.Called(ctx, cartID, dishID, quantity, unitPrice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Line), args.Error(1)
}

func (m *MockRepository) RemoveOne(ctx context.Context, cartID, dishID int64) error {
	return m.Called(ctx, cartID, dishID).Error(0)
}

func (m *MockRepository) GetLines(ctx context.Context, q db.Querier, cartID int64) ([]Line, error) {
	args := m.Called(ctx, q, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Line), args.Error(1)
}

func (m *MockRepository) ClearLines(ctx context.Context, q db.Querier, cartID int64) (int64, error) {
	args := m.Called(ctx, q, cartID)
	return args.Get(0).(int64), args.Error(1)
}

type MockLookup struct {
	mock.Mock
}

func (m *MockLookup) ResolveDish(ctx context.Context, dishID int64) (*catalog.Dish, error) {
	args := m.Called(ctx, dishID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Dish), args.Error(1)
}

func TestService_AddItem(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()
	dish := &catalog.Dish{ID: 7, Name: "Soup", Price: decimal.RequireFromString("10.00")}

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)

		lookup.On("ResolveDish", ctx, int64(7)).Return(dish, nil).Once()
		repo.On("EnsureCart", ctx, customerID).Return(int64(1), nil).Once()
		repo.On("UpsertLine", ctx, int64(1), int64(7), 2, dish.Price).
			Return(&Line{CartID: 1, DishID: 7, Quantity: 2, UnitPrice: dish.Price}, nil).Once()

		line, err := NewService(repo, lookup).AddItem(ctx, customerID, 7, 2)
		require.NoError(t, err)
		assert.Equal(t, "Soup", line.DishName)
		assert.Equal(t, 2, line.Quantity)
		repo.AssertExpectations(t)
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)

		_, err := NewService(repo, lookup).AddItem(ctx, uuid.Nil, 7, 1)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
		repo.AssertNotCalled(t, "EnsureCart", mock.Anything, mock.Anything)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)

		for _, q := range []int{0, -1, MaxLineQuantity + 1, math.MaxInt} {
			_, err := NewService(repo, lookup).AddItem(ctx, customerID, 7, q)
			assert.ErrorIs(t, err, ErrInvalidQuantity, "quantity %d", q)
		}
		lookup.AssertNotCalled(t, "ResolveDish", mock.Anything, mock.Anything)
	})

	t.Run("MaxQuantityAccepted", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)

		lookup.On("ResolveDish", ctx, int64(7)).Return(dish, nil).Once()
		repo.On("EnsureCart", ctx, customerID).Return(int64(1), nil).Once()
		repo.On("UpsertLine", ctx, int64(1), int64(7), MaxLineQuantity, dish.Price).
			Return(&Line{CartID: 1, DishID: 7, Quantity: MaxLineQuantity, UnitPrice: dish.Price}, nil).Once()

		line, err := NewService(repo, lookup).AddItem(ctx, customerID, 7, MaxLineQuantity)
		require.NoError(t, err)
		assert.Equal(t, MaxLineQuantity, line.Quantity)
	})

	t.Run("AccumulatedLimit", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)

		lookup.On("ResolveDish", ctx, int64(7)).Return(dish, nil).Once()
		repo.On("EnsureCart", ctx, customerID).Return(int64(1), nil).Once()
		repo.On("UpsertLine", ctx, int64(1), int64(7), 50, dish.Price).Return(nil, ErrInvalidQuantity).Once()

		_, err := NewService(repo, lookup).AddItem(ctx, customerID, 7, 50)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("DishNotFound", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)
		lookup.On("ResolveDish", ctx, int64(9)).Return(nil, catalog.ErrDishNotFound).Once()

		_, err := NewService(repo, lookup).AddItem(ctx, customerID, 9, 1)
		assert.ErrorIs(t, err, ErrDishNotFound)
		repo.AssertNotCalled(t, "EnsureCart", mock.Anything, mock.Anything)
	})

	t.Run("UpsertError", func(t *testing.T) {
		repo := new(MockRepository)
		lookup := new(MockLookup)

		lookup.On("ResolveDish", ctx, int64(7)).Return(dish, nil).Once()
		repo.On("EnsureCart", ctx, customerID).Return(int64(1), nil).Once()
		repo.On("UpsertLine", ctx, int64(1), int64(7), 1, dish.Price).Return(nil, errors.New("db error")).Once()

		_, err := NewService(repo, lookup).AddItem(ctx, customerID, 7, 1)
		assert.EqualError(t, err, "db error")
	})
}

func TestService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByCustomer", ctx, customerID).Return(&Cart{ID: 4}, nil).Once()
		repo.On("RemoveOne", ctx, int64(4), int64(7)).Return(nil).Once()

		assert.NoError(t, NewService(repo, nil).RemoveItem(ctx, customerID, 7))
		repo.AssertExpectations(t)
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		assert.ErrorIs(t, NewService(new(MockRepository), nil).RemoveItem(ctx, uuid.Nil, 7), ErrNotAuthenticated)
	})

	t.Run("NoCart", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByCustomer", ctx, customerID).Return(nil, nil).Once()

		assert.ErrorIs(t, NewService(repo, nil).RemoveItem(ctx, customerID, 7), ErrCartNotFound)
	})

	t.Run("NoLine", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("GetCartByCustomer", ctx, customerID).Return(&Cart{ID: 4}, nil).Once()
		repo.On("RemoveOne", ctx, int64(4), int64(8)).Return(ErrLineNotFound).Once()

		assert.ErrorIs(t, NewService(repo, nil).RemoveItem(ctx, customerID, 8), ErrLineNotFound)
	})
}

func TestService_GetCart(t *testing.T) {
	ctx := context.Background()
	customerID := uuid.New()

	repo := new(MockRepository)
	repo.On("GetCartByCustomer", ctx, customerID).Return(nil, nil).Once()

	c, err := NewService(repo, nil).GetCart(ctx, customerID)
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = NewService(repo, nil).GetCart(ctx, uuid.Nil)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
