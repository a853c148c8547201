package cart

type LineView struct {
	DishID    int64  `json:"dish_id"`
	DishName  string `json:"dish_name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

type View struct {
	ID       int64      `json:"id"`
	Lines    []LineView `json:"lines"`
	Subtotal string     `json:"subtotal"`
}

func ToLineView(l Line) LineView {
	return LineView{
		DishID:    l.DishID,
		DishName:  l.DishName,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice.StringFixed(2),
		Total:     l.Total().StringFixed(2),
	}
}

// ToView renders a cart for the API. A nil cart is an empty one.
func ToView(c *Cart) *View {
	if c == nil {
		return &View{Lines: []LineView{}, Subtotal: "0.00"}
	}

	lines := make([]LineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, ToLineView(l))
	}

	return &View{
		ID:       c.ID,
		Lines:    lines,
		Subtotal: c.Subtotal().StringFixed(2),
	}
}
