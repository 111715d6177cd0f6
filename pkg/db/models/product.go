package models

import "time"

// Product is simple reference data for the storefront catalog.
type Product struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Price     int64     `gorm:"column:price;not null" json:"price"`
	ImageURL  *string   `gorm:"column:image_url" json:"image_url"`
	Category  *string   `gorm:"column:category" json:"category"`
	SKU       *string   `gorm:"column:sku" json:"sku"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Product) TableName() string { return "products" }
