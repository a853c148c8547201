package catalog

import "github.com/shopspring/decimal"

type Dish struct {
	ID          int64           `json:"id"`
	MenuID      int64           `json:"menu_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
}

type DishPage struct {
	Dishes []Dish `json:"dishes"`
	Total  int    `json:"total"`
}
