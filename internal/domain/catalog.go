package domain

import "time"

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Material struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BrandID     int64     `json:"brand_id"`
	CategoryID  int64     `json:"category_id"`
	// PriceCents avoids floating point money.
	PriceCents int64     `json:"price_cents"`
	Stock      int       `json:"stock"`
	Unit       string    `json:"unit"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type BrandUpsert struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

func (r *BrandUpsert) Validate() error {
	v := NewValidationError()
	if r.Name == "" {
		v.Add("name", "is required")
	}
	if v.Empty() {
		return nil
	}
	return v
}

type CategoryUpsert struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
}

func (r *CategoryUpsert) Validate() error {
	if r.Name == "" {
		return FieldError("name", "is required")
	}
	return nil
}

type MaterialUpsert struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BrandID     int64  `json:"brand_id"`
	CategoryID  int64  `json:"category_id"`
	PriceCents  int64  `json:"price_cents"`
	Stock       int    `json:"stock"`
	Unit        string `json:"unit"`
	ImageURL    string `json:"image_url"`
}

func (r *MaterialUpsert) Validate() error {
	v := NewValidationError()
	if r.Name == "" {
		v.Add("name", "is required")
	}
	if r.BrandID <= 0 {
		v.Add("brand_id", "is required")
	}
	if r.CategoryID <= 0 {
		v.Add("category_id", "is required")
	}
	if r.PriceCents < 0 {
		v.Add("price_cents", "must not be negative")
	}
	if r.Stock < 0 {
		v.Add("stock", "must not be negative")
	}
	if v.Empty() {
		return nil
	}
	return v
}
