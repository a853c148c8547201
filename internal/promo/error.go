package promo

import "errors"

var (
	ErrPromoNotFound      = errors.New("promo code not found")
	ErrInvalidPromoInput  = errors.New("invalid promo code input")
	ErrCodeSpaceExhausted = errors.New("could not generate a unique promo code")
)
