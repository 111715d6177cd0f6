package models

import "time"

// OrderUnit is one physical item instance: a line with quantity N expands to N
// unit rows (UnitNo 1..N) inside the same transaction that created the line.
type OrderUnit struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID    int64      `gorm:"column:order_id;not null;index" json:"order_id"`
	OrderToken string     `gorm:"column:order_token;not null;index" json:"order_token"`
	UnitNo     int        `gorm:"column:unit_no;not null" json:"unit_no"`
	IsPaid     bool       `gorm:"column:is_paid;not null;default:false" json:"is_paid"`
	PaidAt     *time.Time `gorm:"column:paid_at" json:"paid_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OrderUnit) TableName() string { return "order_units" }
