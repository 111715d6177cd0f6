package models

import "time"

// Order is one line item of a checkout. The schema is deliberately wide: every
// row carries the full customer/header block, and all rows of one checkout
// share the same OrderToken. Header-level updates always go bulk-by-token so
// the rows never drift apart.
type Order struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderToken string `gorm:"column:order_token;not null;index" json:"order_token"`

	CustomerName string  `gorm:"column:customer_name;not null" json:"customer_name"`
	CustomerKana *string `gorm:"column:customer_kana" json:"customer_kana"`
	PostalCode   *string `gorm:"column:postal_code" json:"postal_code"`
	Prefecture   *string `gorm:"column:prefecture" json:"prefecture"`
	City         *string `gorm:"column:city" json:"city"`
	Street       *string `gorm:"column:street" json:"street"`
	Building     *string `gorm:"column:building" json:"building"`
	AddressFull  string  `gorm:"column:address_full" json:"address_full"`
	Email        *string `gorm:"column:email" json:"email"`
	Phone        *string `gorm:"column:phone" json:"phone"`
	Note         *string `gorm:"column:note" json:"note"`

	ProductID   *int64 `gorm:"column:product_id" json:"product_id"`
	ProductName string `gorm:"column:product_name;not null" json:"product_name"`
	UnitPrice   int64  `gorm:"column:unit_price;not null" json:"unit_price"`
	Quantity    int    `gorm:"column:quantity;not null" json:"quantity"`
	LineTotal   int64  `gorm:"column:line_total;not null" json:"line_total"`

	Subtotal          int64  `gorm:"column:subtotal;not null" json:"subtotal"`
	Shipping          int64  `gorm:"column:shipping;not null;default:0" json:"shipping"`
	ShippingOptionAdd int64  `gorm:"column:shipping_option_add;not null;default:0" json:"shipping_option_add"`
	Total             int64  `gorm:"column:total;not null" json:"total"`
	PaymentMethod     string `gorm:"column:payment_method;not null;default:'bank_transfer'" json:"payment_method"`
	ShippingMethod    string `gorm:"column:shipping_method" json:"shipping_method"`

	IsPaid     bool       `gorm:"column:is_paid;not null;default:false" json:"is_paid"`
	PaidAt     *time.Time `gorm:"column:paid_at" json:"paid_at"`
	Status     string     `gorm:"column:status;not null;default:'pending'" json:"status"`
	TrackingNo *string    `gorm:"column:tracking_no" json:"tracking_no"`

	RawPayload string `gorm:"column:raw_payload" json:"-"`

	Units []OrderUnit `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"units,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

// Order status values.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
)
