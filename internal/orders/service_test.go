package orders

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/pkg/db"
	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openOrderDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`
		CREATE TABLE orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_token TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_kana TEXT,
			postal_code TEXT,
			prefecture TEXT,
			city TEXT,
			street TEXT,
			building TEXT,
			address_full TEXT,
			email TEXT,
			phone TEXT,
			note TEXT,
			product_id INTEGER,
			product_name TEXT NOT NULL,
			unit_price INTEGER NOT NULL,
			quantity INTEGER NOT NULL,
			line_total INTEGER NOT NULL,
			subtotal INTEGER NOT NULL,
			shipping INTEGER NOT NULL DEFAULT 0,
			shipping_option_add INTEGER NOT NULL DEFAULT 0,
			total INTEGER NOT NULL,
			payment_method TEXT NOT NULL DEFAULT 'bank_transfer',
			shipping_method TEXT,
			is_paid INTEGER NOT NULL DEFAULT 0,
			paid_at DATETIME,
			status TEXT NOT NULL DEFAULT 'pending',
			tracking_no TEXT,
			raw_payload TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)`).Error)
	require.NoError(t, conn.Exec(`
		CREATE TABLE order_units (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id INTEGER NOT NULL,
			order_token TEXT NOT NULL,
			unit_no INTEGER NOT NULL,
			is_paid INTEGER NOT NULL DEFAULT 0,
			paid_at DATETIME,
			created_at DATETIME
		)`).Error)
	return conn
}

type recordingNotifier struct {
	tokens []string
	events []string
}

func (r *recordingNotifier) Send(ctx context.Context, token, eventType string, opts notify.SendOptions) notify.Result {
	r.tokens = append(r.tokens, token)
	r.events = append(r.events, eventType)
	return notify.Result{Token: token, Outcome: notify.OutcomeSent}
}

func newTestService(t *testing.T, conn *gorm.DB, notifier confirmationSender) Service {
	t.Helper()
	svc, err := NewService(db.FromConn(conn), NewRepository(conn), notifier, nil, 0)
	require.NoError(t, err)
	return svc
}

var tokenPattern = regexp.MustCompile(`^\d{14}-[0-9a-f]{8}$`)

func TestCreateOrderSingleLine(t *testing.T) {
	conn := openOrderDB(t)
	notifier := &recordingNotifier{}
	svc := newTestService(t, conn, notifier)

	payload := []byte(`{
		"customer": {"name": "山田花子", "email": "hanako@example.com",
			"postalCode": "150-0001", "prefecture": "東京都", "city": "渋谷区", "street": "神宮前1-1"},
		"items": [{"category": "モンステラ", "variety": "デリシオーサ", "unitPrice": 3000, "quantity": 2}]
	}`)
	var req CreateOrderRequest
	require.NoError(t, json.Unmarshal(payload, &req))

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Regexp(t, tokenPattern, resp.OrderToken)
	assert.Equal(t, int64(6000), resp.Total)

	var rows []models.Order
	require.NoError(t, conn.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "モンステラ デリシオーサ", rows[0].ProductName)
	assert.Equal(t, int64(6000), rows[0].Subtotal)
	assert.Equal(t, int64(6000), rows[0].LineTotal)
	assert.Equal(t, "150-0001 東京都 渋谷区 神宮前1-1", rows[0].AddressFull)
	assert.Equal(t, models.OrderStatusPending, rows[0].Status)
	assert.Equal(t, "bank_transfer", rows[0].PaymentMethod)
	assert.NotEmpty(t, rows[0].RawPayload)

	var units []models.OrderUnit
	require.NoError(t, conn.Order("unit_no ASC").Find(&units).Error)
	require.Len(t, units, 2)
	assert.Equal(t, 1, units[0].UnitNo)
	assert.Equal(t, 2, units[1].UnitNo)
	assert.Equal(t, rows[0].ID, units[0].OrderID)
	assert.Equal(t, resp.OrderToken, units[0].OrderToken)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, models.EventOrderConfirmed, notifier.events[0])
	assert.Equal(t, resp.OrderToken, notifier.tokens[0])
}

func TestCreateOrderMultiLineSharesToken(t *testing.T) {
	conn := openOrderDB(t)
	svc := newTestService(t, conn, nil)

	req := CreateOrderRequest{
		Customer: CustomerPayload{Name: "佐藤太郎"},
		Items: []ItemPayload{
			{ProductName: "パキラ", UnitPrice: flex(2000), Quantity: flex(1)},
			{ProductName: "ガジュマル", UnitPrice: flex(1500), Quantity: flex(3)},
		},
		Summary: &SummaryPayload{Shipping: flex(800), ShippingMethod: "ヤマト運輸"},
	}

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(2000+4500+800), resp.Total)

	var rows []models.Order
	require.NoError(t, conn.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0].OrderToken, rows[1].OrderToken)
	assert.Equal(t, int64(6500), rows[0].Subtotal)
	assert.Equal(t, int64(6500), rows[1].Subtotal)
	assert.Equal(t, resp.Total, rows[1].Total)
	assert.Equal(t, "ヤマト運輸", rows[0].ShippingMethod)

	var unitCount int64
	require.NoError(t, conn.Model(&models.OrderUnit{}).Count(&unitCount).Error)
	assert.Equal(t, int64(4), unitCount)
}

func TestCreateOrderLenientPayload(t *testing.T) {
	conn := openOrderDB(t)
	svc := newTestService(t, conn, nil)

	payload := []byte(`{
		"customer": {"lastName": "鈴木", "firstName": "一郎"},
		"items": [
			{"productName": "アガベ", "unitPrice": "4800", "quantity": "2"},
			{"productName": "おまけ", "unitPrice": "ご相談", "quantity": null}
		]
	}`)
	var req CreateOrderRequest
	require.NoError(t, json.Unmarshal(payload, &req))

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(9600), resp.Total)

	var rows []models.Order
	require.NoError(t, conn.Order("id ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, "鈴木 一郎", rows[0].CustomerName)
	assert.Equal(t, int64(0), rows[1].UnitPrice)
	assert.Equal(t, 1, rows[1].Quantity)
}

func TestCreateOrderClientTotalOverride(t *testing.T) {
	conn := openOrderDB(t)
	svc := newTestService(t, conn, nil)

	req := CreateOrderRequest{
		Customer: CustomerPayload{Name: "山田花子"},
		Items:    []ItemPayload{{ProductName: "モンステラ", UnitPrice: flex(3000), Quantity: flex(2)}},
		Summary:  &SummaryPayload{Total: flex(100)},
	}

	resp, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.Total)
}

func TestCreateOrderValidation(t *testing.T) {
	conn := openOrderDB(t)
	svc := newTestService(t, conn, nil)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		Customer: CustomerPayload{Name: "山田花子"},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(context.Background(), CreateOrderRequest{
		Items: []ItemPayload{{ProductName: "モンステラ", UnitPrice: flex(3000)}},
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

type failSecondLineRepo struct {
	Repository
	calls int
}

func (f *failSecondLineRepo) WithTx(tx *gorm.DB) Repository {
	f.Repository = f.Repository.WithTx(tx)
	return f
}

func (f *failSecondLineRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	f.calls++
	if f.calls > 1 {
		return errors.New("disk full")
	}
	return f.Repository.CreateOrder(ctx, order)
}

func TestCreateOrderRollsBackOnMidItemFailure(t *testing.T) {
	conn := openOrderDB(t)
	repo := &failSecondLineRepo{Repository: NewRepository(conn)}
	svc, err := NewService(db.FromConn(conn), repo, nil, nil, 0)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateOrderRequest{
		Customer: CustomerPayload{Name: "山田花子"},
		Items: []ItemPayload{
			{ProductName: "パキラ", UnitPrice: flex(2000), Quantity: flex(1)},
			{ProductName: "ガジュマル", UnitPrice: flex(1500), Quantity: flex(1)},
		},
	})
	require.Error(t, err)

	var orderCount, unitCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, conn.Model(&models.OrderUnit{}).Count(&unitCount).Error)
	assert.Zero(t, orderCount, "failed checkout must leave no order rows")
	assert.Zero(t, unitCount, "failed checkout must leave no unit rows")
}

func TestCreateOrderDefaultShipping(t *testing.T) {
	conn := openOrderDB(t)
	svc, err := NewService(db.FromConn(conn), NewRepository(conn), nil, nil, 800)
	require.NoError(t, err)

	resp, err := svc.Create(context.Background(), CreateOrderRequest{
		Customer: CustomerPayload{Name: "山田花子"},
		Items:    []ItemPayload{{ProductName: "モンステラ", UnitPrice: flex(3000), Quantity: flex(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3800), resp.Total)
}
