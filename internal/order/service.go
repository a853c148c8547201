package order

import (
	"context"
	"errors"

	"restaurant-be/internal/customer"
	"restaurant-be/internal/logger"
	"restaurant-be/internal/query"

	"go.uber.org/zap"
)

type Service interface {
	QueryOrders(ctx context.Context, scope Scope, params query.Params) (*Page, error)
	GetOrder(ctx context.Context, orderID int64) (*OrderView, error)
	ToggleStatus(ctx context.Context, orderID int64) (string, error)
	DeleteOrder(ctx context.Context, orderID int64) error
}

type service struct {
	repo      Repository
	customers customer.Resolver
}

func NewService(repo Repository, customers customer.Resolver) Service {
	return &service{repo: repo, customers: customers}
}

// QueryOrders returns one page of live orders visible to scope, sorted or
// filtered by params.Sorting, with the pre-pagination total.
func (s *service) QueryOrders(
	ctx context.Context,
	scope Scope,
	params query.Params,
) (*Page, error) {

	if !scope.Staff {
		err := customer.Require(ctx, s.customers, scope.CustomerID)
		switch {
		case errors.Is(err, customer.ErrNotAuthenticated):
			return nil, ErrNotAuthenticated
		case errors.Is(err, customer.ErrInvalidCustomer):
			return nil, ErrInvalidCustomer
		case err != nil:
			return nil, err
		}
	}

	params = params.Normalize()
	filter := FilterFor(scope, params.Sorting)

	log := logger.ForMethod(ctx, "service", "QueryOrders").With(
		zap.Bool("staff", scope.Staff),
		zap.Stringer("sorting", params.Sorting),
	)

	orders, err := s.repo.FetchOrders(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountOrders(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	lines, err := s.repo.FetchOrderLines(ctx, ids)
	if err != nil {
		log.Error("failed to fetch order lines", zap.Error(err))
		return nil, err
	}
	for i := range orders {
		orders[i].Lines = lines[orders[i].ID]
	}

	log.Debug("orders queried", zap.Int("rows", len(orders)), zap.Int("total", total))

	return &Page{Orders: ToViews(orders), Total: total}, nil
}

func (s *service) GetOrder(ctx context.Context, orderID int64) (*OrderView, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	v := ToView(o)
	return &v, nil
}

// ToggleStatus flips an order between Pending and Delivered and returns
// the new status label.
func (s *service) ToggleStatus(ctx context.Context, orderID int64) (string, error) {
	completed, err := s.repo.ToggleCompleted(ctx, orderID)
	if err != nil {
		return "", err
	}
	if completed == nil {
		return "", ErrOrderNotFound
	}

	status := StatusLabel(*completed)
	logger.ForMethod(ctx, "service", "ToggleStatus").
		Info("order status changed", zap.Int64("order_id", orderID), zap.String("status", status))
	return status, nil
}

func (s *service) DeleteOrder(ctx context.Context, orderID int64) error {
	ok, err := s.repo.SoftDelete(ctx, orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}
