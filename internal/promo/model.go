package promo

import "time"

type PromoCode struct {
	ID              int64     `json:"id"`
	Code            string    `json:"code"`
	ExpirationDate  time.Time `json:"expiration_date"`
	MaxUsageCount   int       `json:"max_usage_count"`
	UsedCount       int       `json:"used_count"`
	DiscountPercent int       `json:"discount_percent"`
	IsDeleted       bool      `json:"-"`
}

// ValidAt reports whether the code can still be redeemed at now.
func (p *PromoCode) ValidAt(now time.Time) bool {
	if p == nil || p.IsDeleted {
		return false
	}
	return now.Before(p.ExpirationDate) && p.UsedCount < p.MaxUsageCount
}

type NewCodeInput struct {
	ExpirationDate  time.Time `json:"expiration_date"`
	MaxUsage        int       `json:"max_usage"`
	DiscountPercent int       `json:"discount_percent"`
}
