package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"restaurant-be/internal/cart"
	"restaurant-be/internal/catalog"
	"restaurant-be/internal/checkout"
	"restaurant-be/internal/db"
	"restaurant-be/internal/logger"
	"restaurant-be/internal/order"
	"restaurant-be/internal/promo"

	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, cart.ErrNotAuthenticated),
		errors.Is(err, checkout.ErrNotAuthenticated),
		errors.Is(err, order.ErrNotAuthenticated),
		errors.Is(err, checkout.ErrInvalidCustomer),
		errors.Is(err, order.ErrInvalidCustomer):
		return http.StatusUnauthorized

	case errors.Is(err, cart.ErrDishNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrLineNotFound),
		errors.Is(err, checkout.ErrCartMissing),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, promo.ErrPromoNotFound),
		errors.Is(err, catalog.ErrMenuNotFound),
		errors.Is(err, catalog.ErrDishNotFound):
		return http.StatusNotFound

	case errors.Is(err, errBadRequest),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidContact),
		errors.Is(err, promo.ErrInvalidPromoInput):
		return http.StatusBadRequest

	case errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusUnprocessableEntity

	case errors.Is(err, db.ErrTransient):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a service error to a status. Server-side failures are
// logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	msg := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		msg = db.ErrTransient.Error()
		w.Header().Set("Retry-After", "1")
	case http.StatusInternalServerError:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = http.StatusText(http.StatusInternalServerError)
	}

	writeJSON(w, status, errorResponse{Error: msg})
}
