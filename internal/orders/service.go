package orders

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/pkg/db"
	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type confirmationSender interface {
	Send(ctx context.Context, token, eventType string, opts notify.SendOptions) notify.Result
}

// Service ingests checkouts: one wide order row per line item, all sharing the
// same token, plus one unit row per physical item, all in one transaction.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
	FindByToken(ctx context.Context, token string) ([]models.Order, error)
}

type service struct {
	client          *db.Client
	repo            Repository
	notifier        confirmationSender
	logg            *logger.Logger
	defaultShipping int64
}

// NewService wires the checkout pipeline. notifier may be nil when outbound
// mail is not configured.
func NewService(client *db.Client, repo Repository, notifier confirmationSender, logg *logger.Logger, defaultShipping int64) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order repository required")
	}
	return &service{
		client:          client,
		repo:            repo,
		notifier:        notifier,
		logg:            logg,
		defaultShipping: defaultShipping,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	name := customerName(req.Customer)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	kana := customerKana(req.Customer)
	address := customerAddress(req.Customer)

	var subtotal int64
	quantities := make([]int, len(req.Items))
	prices := make([]int64, len(req.Items))
	for i, item := range req.Items {
		price := item.UnitPrice.Int64()
		qty := int(item.Quantity.Or(1))
		if qty < 1 {
			qty = 1
		}
		prices[i] = price
		quantities[i] = qty
		subtotal += price * int64(qty)
	}

	var summary SummaryPayload
	if req.Summary != nil {
		summary = *req.Summary
	}
	shipping := summary.Shipping.Or(s.defaultShipping)
	optionAdd := summary.ShippingOptionAdd.Int64()
	// The client may override the computed total; it always has, and admin
	// reconciliation catches mismatches downstream.
	total := summary.Total.Or(subtotal + shipping + optionAdd)
	paymentMethod := summary.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "bank_transfer"
	}

	token := newOrderToken()

	rawPayload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding order payload")
	}

	txErr := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i, item := range req.Items {
			order := models.Order{
				OrderToken:        token,
				CustomerName:      name,
				CustomerKana:      optional(kana),
				PostalCode:        optional(req.Customer.PostalCode),
				Prefecture:        optional(req.Customer.Prefecture),
				City:              optional(req.Customer.City),
				Street:            optional(req.Customer.Street),
				Building:          optional(req.Customer.Building),
				AddressFull:       address,
				Email:             optional(req.Customer.Email),
				Phone:             optional(req.Customer.Phone),
				Note:              optional(req.Note),
				ProductName:       productName(item),
				UnitPrice:         prices[i],
				Quantity:          quantities[i],
				LineTotal:         prices[i] * int64(quantities[i]),
				Subtotal:          subtotal,
				Shipping:          shipping,
				ShippingOptionAdd: optionAdd,
				Total:             total,
				PaymentMethod:     paymentMethod,
				ShippingMethod:    summary.ShippingMethod,
				Status:            models.OrderStatusPending,
				RawPayload:        string(rawPayload),
			}
			if item.ProductID.Present() {
				id := item.ProductID.Int64()
				order.ProductID = &id
			}
			if err := repo.CreateOrder(ctx, &order); err != nil {
				return err
			}

			units := make([]models.OrderUnit, 0, quantities[i])
			for n := 1; n <= quantities[i]; n++ {
				units = append(units, models.OrderUnit{
					OrderID:    order.ID,
					OrderToken: token,
					UnitNo:     n,
				})
			}
			if err := repo.CreateUnits(ctx, units); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, txErr, "persisting order")
	}

	if s.notifier != nil {
		s.notifier.Send(ctx, token, models.EventOrderConfirmed, notify.SendOptions{})
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderToken(ctx, token), "order created")
	}
	return &CreateOrderResponse{OrderToken: token, Total: total}, nil
}

func (s *service) FindByToken(ctx context.Context, token string) ([]models.Order, error) {
	return s.repo.FindByToken(ctx, token)
}

// customerName resolves the explicit name first, then the split fields.
func customerName(c CustomerPayload) string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(c.LastName) + " " + strings.TrimSpace(c.FirstName))
}

func customerKana(c CustomerPayload) string {
	if kana := strings.TrimSpace(c.Kana); kana != "" {
		return kana
	}
	return strings.TrimSpace(strings.TrimSpace(c.LastKana) + " " + strings.TrimSpace(c.FirstKana))
}

// customerAddress prefers the preformatted field, then joins the parts, then
// falls back to the legacy single address field.
func customerAddress(c CustomerPayload) string {
	if full := strings.TrimSpace(c.AddressFull); full != "" {
		return full
	}
	parts := []string{}
	for _, part := range []string{c.PostalCode, c.Prefecture, c.City, c.Street, c.Building} {
		if p := strings.TrimSpace(part); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	return strings.TrimSpace(c.Address)
}

// productName synthesizes "category variety" when both are present; older
// payloads only carry an explicit product name.
func productName(item ItemPayload) string {
	category := strings.TrimSpace(item.Category)
	variety := strings.TrimSpace(item.Variety)
	if category != "" && variety != "" {
		return category + " " + variety
	}
	if name := strings.TrimSpace(item.ProductName); name != "" {
		return name
	}
	if category != "" {
		return category
	}
	return variety
}

func newOrderToken() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return time.Now().UTC().Format("20060102150405") + "-" + suffix
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
