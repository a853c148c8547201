package customer

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidCustomer  = errors.New("customer not found")
)
