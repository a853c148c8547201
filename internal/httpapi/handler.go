package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"restaurant-be/internal/auth"
	"restaurant-be/internal/cart"
	"restaurant-be/internal/catalog"
	"restaurant-be/internal/checkout"
	"restaurant-be/internal/metrics"
	"restaurant-be/internal/order"
	"restaurant-be/internal/promo"
	"restaurant-be/internal/query"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	Cart     cart.Service
	Checkout checkout.Service
	Orders   order.Service
	Promos   promo.Service
	Catalog  catalog.Service
	Metrics  *metrics.Registry
}

// RegisterRoutes mounts the customer routes on r and the staff routes on
// admin.
func (h *Handler) RegisterRoutes(r, admin *mux.Router) {
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.metrics).Methods(http.MethodGet)

	r.HandleFunc("/api/cart", h.getCart).Methods(http.MethodGet)
	r.HandleFunc("/api/cart/items", h.addCartItem).Methods(http.MethodPost)
	r.HandleFunc("/api/cart/items/{dishId}", h.removeCartItem).Methods(http.MethodDelete)
	r.HandleFunc("/api/checkout", h.checkout).Methods(http.MethodPost)
	r.HandleFunc("/api/orders", h.listMyOrders).Methods(http.MethodGet)
	r.HandleFunc("/api/menus/{menuId}/dishes", h.listMenuDishes).Methods(http.MethodGet)
	r.HandleFunc("/api/dishes/{dishId}", h.getDish).Methods(http.MethodGet)

	admin.HandleFunc("/orders", h.listAllOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/status", h.toggleOrderStatus).Methods(http.MethodPatch)
	admin.HandleFunc("/orders/{id}", h.deleteOrder).Methods(http.MethodDelete)
	admin.HandleFunc("/promo-codes", h.listPromoCodes).Methods(http.MethodGet)
	admin.HandleFunc("/promo-codes", h.createPromoCode).Methods(http.MethodPost)
	admin.HandleFunc("/promo-codes/{id}", h.deletePromoCode).Methods(http.MethodDelete)
	admin.HandleFunc("/promo-codes/{id}/qrcode", h.promoQRCode).Methods(http.MethodGet)
}

func callerID(r *http.Request) uuid.UUID {
	id, _ := auth.IdentityFrom(r.Context())
	return id.CustomerID
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

// queryParams reads sort, page and pageSize. Missing or malformed values
// fall back to the defaults.
func queryParams(r *http.Request) query.Params {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("pageSize"))
	return query.Params{
		Sorting:  query.ParseSorting(q.Get("sort")),
		Page:     page,
		PageSize: size,
	}.Normalize()
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid payload", errBadRequest)
	}
	return nil
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Metrics.Snapshot())
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Cart.GetCart(r.Context(), callerID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cart.ToView(c))
}

type addItemRequest struct {
	DishID   int64 `json:"dish_id"`
	Quantity int   `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	line, err := h.Cart.AddItem(r.Context(), callerID(r), req.DishID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cart.ToLineView(*line))
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathID(r, "dishId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Cart.RemoveItem(r.Context(), callerID(r), dishID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type checkoutRequest struct {
	checkout.ContactInfo
	PromoCode string `json:"promo_code"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.Checkout.Checkout(r.Context(), callerID(r), req.ContactInfo, req.PromoCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listMyOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, order.Scope{CustomerID: callerID(r)})
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request) {
	h.listOrders(w, r, order.Scope{Staff: true})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, scope order.Scope) {
	page, err := h.Orders.QueryOrders(r.Context(), scope, queryParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) listMenuDishes(w http.ResponseWriter, r *http.Request) {
	menuID, err := pathID(r, "menuId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.Catalog.ListMenuDishes(r.Context(), menuID, queryParams(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getDish(w http.ResponseWriter, r *http.Request) {
	dishID, err := pathID(r, "dishId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	dish, err := h.Catalog.GetDish(r.Context(), dishID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	v, err := h.Orders.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) toggleOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	status, err := h.Orders.ToggleStatus(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": status})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Orders.DeleteOrder(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPromoCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.Promos.ListCodes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if codes == nil {
		codes = []promo.PromoCode{}
	}
	writeJSON(w, http.StatusOK, codes)
}

func (h *Handler) createPromoCode(w http.ResponseWriter, r *http.Request) {
	var in promo.NewCodeInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.Promos.CreateCode(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) deletePromoCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.Promos.DeleteCode(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) promoQRCode(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	png, err := h.Promos.QRCode(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
