package order

import (
	"fmt"
	"time"
)

const noPromoLabel = "None"

type LineView struct {
	DishID    int64  `json:"dish_id"`
	DishName  string `json:"dish_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderView struct {
	ID          int64      `json:"id"`
	CustomerID  string     `json:"customer_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	Price       string     `json:"price"`
	Date        string     `json:"date"`
	Status      string     `json:"status"`
	PromoCode   string     `json:"promo_code"`
	Lines       []LineView `json:"lines"`
}

type Page struct {
	Orders []OrderView `json:"orders"`
	Total  int         `json:"total"`
}

func StatusLabel(completed bool) string {
	if completed {
		return "Delivered"
	}
	return "Pending"
}

// FormatDate renders MM/dd/yy H:mm:ss with an unpadded 24h hour.
func FormatDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%02d/%02d/%02d %d:%02d:%02d",
		int(t.Month()), t.Day(), t.Year()%100,
		t.Hour(), t.Minute(), t.Second(),
	)
}

func ToView(o *Order) OrderView {
	promo := o.PromoCode
	if promo == "" {
		promo = noPromoLabel
	}

	lines := make([]LineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, LineView{
			DishID:    l.DishID,
			DishName:  l.DishName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.StringFixed(2),
		})
	}

	return OrderView{
		ID:          o.ID,
		CustomerID:  o.CustomerID.String(),
		FirstName:   o.FirstName,
		LastName:    o.LastName,
		PhoneNumber: o.PhoneNumber,
		Address:     o.Address,
		Price:       o.TotalPrice.StringFixed(2),
		Date:        FormatDate(o.CreatedAt),
		Status:      StatusLabel(o.Completed),
		PromoCode:   promo,
		Lines:       lines,
	}
}

func ToViews(orders []Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, ToView(&orders[i]))
	}
	return views
}
