package orders

import "github.com/nurserysera/storefront-backend/pkg/types"

// CreateOrderRequest mirrors the checkout payload the storefront posts. The
// storefront has shipped several frontend revisions, so most fields are
// optional and numbers arrive as numbers or strings interchangeably.
type CreateOrderRequest struct {
	Customer CustomerPayload `json:"customer"`
	Note     string          `json:"note"`
	Items    []ItemPayload   `json:"items"`
	Summary  *SummaryPayload `json:"summary"`
}

type CustomerPayload struct {
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	FirstName string `json:"firstName"`
	Kana      string `json:"kana"`
	LastKana  string `json:"lastKana"`
	FirstKana string `json:"firstKana"`

	PostalCode  string `json:"postalCode"`
	Prefecture  string `json:"prefecture"`
	City        string `json:"city"`
	Street      string `json:"street"`
	Building    string `json:"building"`
	AddressFull string `json:"addressFull"`
	Address     string `json:"address"`

	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ItemPayload struct {
	ProductID   types.FlexInt `json:"productId"`
	ProductName string        `json:"productName"`
	Category    string        `json:"category"`
	Variety     string        `json:"variety"`
	UnitPrice   types.FlexInt `json:"unitPrice"`
	Quantity    types.FlexInt `json:"quantity"`
}

type SummaryPayload struct {
	Shipping          types.FlexInt `json:"shipping"`
	ShippingOptionAdd types.FlexInt `json:"shippingOptionAdd"`
	Total             types.FlexInt `json:"total"`
	PaymentMethod     string        `json:"paymentMethod"`
	ShippingMethod    string        `json:"shippingMethod"`
}

type CreateOrderResponse struct {
	OrderToken string `json:"orderToken"`
	Total      int64  `json:"total"`
}
