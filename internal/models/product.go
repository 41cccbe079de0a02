package models

import "github.com/google/uuid"

// Product is a catalog entry. Price is stored in whole currency units
// (IDR has no fractional unit) and is snapshotted into order items at
// order creation, never re-read afterwards.
type Product struct {
	BaseModel
	Name       string     `json:"name"`
	Price      int64      `json:"price"`
	ImageURL   string     `json:"image_url"`
	CategoryID *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category  `json:"category,omitempty"`
}
