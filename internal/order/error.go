package order

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrInvalidCustomer  = errors.New("customer not found")
)
