package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrDishNotFound = errors.New("dish not found")
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("cart item not found")
)
