package checkout

import "errors"

var (
	ErrNotAuthenticated  = errors.New("user not authenticated")
	ErrInvalidCustomer   = errors.New("customer not found")
	ErrInvalidContact    = errors.New("invalid contact information")
	ErrCartMissing       = errors.New("cart not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid checkout state transition")
)
