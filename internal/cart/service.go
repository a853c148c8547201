package cart

import (
	"context"
	"errors"

	"restaurant-be/internal/catalog"
	"restaurant-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service is the cart store. Every operation takes the caller's identity
// explicitly.
type Service interface {
	AddItem(ctx context.Context, customerID uuid.UUID, dishID int64, quantity int) (*Line, error)
	RemoveItem(ctx context.Context, customerID uuid.UUID, dishID int64) error
	GetCart(ctx context.Context, customerID uuid.UUID) (*Cart, error)
}

type service struct {
	repo    Repository
	catalog catalog.Lookup
}

func NewService(repo Repository, lookup catalog.Lookup) Service {
	return &service{repo: repo, catalog: lookup}
}

func (s *service) AddItem(
	ctx context.Context,
	customerID uuid.UUID,
	dishID int64,
	quantity int,
) (*Line, error) {

	if customerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	if quantity < 1 || quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	log := logger.ForMethod(ctx, "service", "AddItem").With(
		zap.String("customer_id", customerID.String()),
		zap.Int64("dish_id", dishID),
		zap.Int("quantity", quantity),
	)

	dish, err := s.catalog.ResolveDish(ctx, dishID)
	if errors.Is(err, catalog.ErrDishNotFound) {
		return nil, ErrDishNotFound
	}
	if err != nil {
		log.Error("failed to resolve dish", zap.Error(err))
		return nil, err
	}

	cartID, err := s.repo.EnsureCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	line, err := s.repo.UpsertLine(ctx, cartID, dish.ID, quantity, dish.Price)
	if err != nil {
		return nil, err
	}
	line.DishName = dish.Name

	return line, nil
}

func (s *service) RemoveItem(ctx context.Context, customerID uuid.UUID, dishID int64) error {
	if customerID == uuid.Nil {
		return ErrNotAuthenticated
	}

	c, err := s.repo.GetCartByCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if c == nil {
		return ErrCartNotFound
	}

	return s.repo.RemoveOne(ctx, c.ID, dishID)
}

// GetCart returns nil, nil when the customer has not created a cart yet.
func (s *service) GetCart(ctx context.Context, customerID uuid.UUID) (*Cart, error) {
	if customerID == uuid.Nil {
		return nil, ErrNotAuthenticated
	}
	return s.repo.GetCartByCustomer(ctx, customerID)
}
