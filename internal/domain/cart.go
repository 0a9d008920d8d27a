package domain

import "time"

const MaxCartItemQuantity = 500

type CartItem struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	MaterialID int64     `json:"material_id"`
	Quantity   int       `json:"quantity"`
	// UnitPriceCents is the material price captured when the item was added.
	UnitPriceCents int64     `json:"unit_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Cart struct {
	Items      []CartItem `json:"items"`
	TotalCents int64      `json:"total_cents"`
}

func (c *Cart) Recalculate() {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	c.TotalCents = total
}

type CartAddRequest struct {
	MaterialID int64 `json:"material_id"`
	Quantity   int   `json:"quantity"`
}

func (r *CartAddRequest) Validate() error {
	v := NewValidationError()
	if r.MaterialID <= 0 {
		v.Add("material_id", "is required")
	}
	if r.Quantity < 1 || r.Quantity > MaxCartItemQuantity {
		v.Add("quantity", "must be between 1 and 500")
	}
	if v.Empty() {
		return nil
	}
	return v
}

type CartUpdateRequest struct {
	Quantity int `json:"quantity"`
}
