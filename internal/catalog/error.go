package catalog

import "errors"

var (
	ErrDishNotFound = errors.New("dish not found")
	ErrMenuNotFound = errors.New("menu not found")
)
