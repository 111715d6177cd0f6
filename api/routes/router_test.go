package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nurserysera/storefront-backend/internal/fulfillment"
	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/internal/orders"
	"github.com/nurserysera/storefront-backend/internal/products"
	"github.com/nurserysera/storefront-backend/internal/reports"
	"github.com/nurserysera/storefront-backend/pkg/brevo"
	"github.com/nurserysera/storefront-backend/pkg/config"
	"github.com/nurserysera/storefront-backend/pkg/db"
	"github.com/nurserysera/storefront-backend/pkg/metrics"
)

const testAdminToken = "test-admin-token"

type stubSender struct {
	sent []brevo.Message
}

func (s *stubSender) Send(ctx context.Context, msg brevo.Message) (string, error) {
	s.sent = append(s.sent, msg)
	return "msg-1", nil
}

func openAPIDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range []string{
		`CREATE TABLE products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL, price INTEGER NOT NULL,
			image_url TEXT, category TEXT, sku TEXT, created_at DATETIME
		)`,
		`CREATE TABLE orders (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_token TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_kana TEXT, postal_code TEXT, prefecture TEXT, city TEXT,
			street TEXT, building TEXT, address_full TEXT, email TEXT, phone TEXT, note TEXT,
			product_id INTEGER, product_name TEXT NOT NULL,
			unit_price INTEGER NOT NULL, quantity INTEGER NOT NULL, line_total INTEGER NOT NULL,
			subtotal INTEGER NOT NULL, shipping INTEGER NOT NULL DEFAULT 0,
			shipping_option_add INTEGER NOT NULL DEFAULT 0, total INTEGER NOT NULL,
			payment_method TEXT NOT NULL DEFAULT 'bank_transfer', shipping_method TEXT,
			is_paid INTEGER NOT NULL DEFAULT 0, paid_at DATETIME,
			status TEXT NOT NULL DEFAULT 'pending', tracking_no TEXT,
			raw_payload TEXT, created_at DATETIME, updated_at DATETIME
		)`,
		`CREATE TABLE order_units (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_id INTEGER NOT NULL, order_token TEXT NOT NULL,
			unit_no INTEGER NOT NULL, is_paid INTEGER NOT NULL DEFAULT 0,
			paid_at DATETIME, created_at DATETIME
		)`,
		`CREATE TABLE email_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			order_token TEXT NOT NULL, event_type TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'reserved',
			attempts INTEGER NOT NULL DEFAULT 0,
			provider_message_id TEXT, error TEXT, sent_at DATETIME,
			created_at DATETIME, updated_at DATETIME,
			CONSTRAINT uq_email_events_token_event UNIQUE (order_token, event_type)
		)`,
	} {
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func newTestRouter(t *testing.T) (http.Handler, *gorm.DB, *stubSender) {
	t.Helper()
	conn := openAPIDatabase(t)
	client := db.FromConn(conn)

	sender := &stubSender{}
	orderRepo := orders.NewRepository(conn)

	dispatcher, err := notify.NewService(notify.NewLedger(conn), orderRepo, sender, nil,
		metrics.NewNotifyMetrics(nil), 0)
	require.NoError(t, err)

	orderSvc, err := orders.NewService(client, orderRepo, dispatcher, nil, 0)
	require.NoError(t, err)

	fulfillmentSvc, err := fulfillment.NewService(client, fulfillment.NewRepository(conn), dispatcher, nil)
	require.NoError(t, err)

	productSvc, err := products.NewService(products.NewRepository(conn))
	require.NoError(t, err)

	reportSvc, err := reports.NewService(reports.NewRepository(conn), nil, time.Minute, nil)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.Admin.Token = testAdminToken

	router := NewRouter(Deps{
		Config:      cfg,
		Products:    productSvc,
		Orders:      orderSvc,
		Fulfillment: fulfillmentSvc,
		Notify:      dispatcher,
		Reports:     reportSvc,
		Metrics:     prometheus.NewRegistry(),
	})
	return router, conn, sender
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("X-Admin-Token", testAdminToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestHealthAndMetrics(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeData(t, rec)["ok"])

	rec = doJSON(t, router, http.MethodGet, "/metrics", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router, _, sender := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"customer": map[string]any{"name": "山田花子", "email": "hanako@example.com"},
		"items": []map[string]any{
			{"productName": "モンステラ", "unitPrice": 3000, "quantity": 2},
		},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	token, _ := data["orderToken"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, float64(6000), data["total"])
	require.Len(t, sender.sent, 1, "order confirmation goes out on checkout")

	rec = doJSON(t, router, http.MethodPut, "/api/admin/orders/"+token+"/paid",
		map[string]any{"paid": true}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, sender.sent, 2, "paid notice follows the toggle")

	// repeat toggle: same state, ledger blocks a second mail
	rec = doJSON(t, router, http.MethodPut, "/api/admin/orders/"+token+"/paid",
		map[string]any{"paid": true}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, sender.sent, 2)

	rec = doJSON(t, router, http.MethodPost, "/api/admin/set-tracking", map[string]any{
		"order_token": token, "tracking_no": "123456789012",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeData(t, rec)["updated"])

	rec = doJSON(t, router, http.MethodPost, "/api/admin/send/shipped", map[string]any{
		"tokens": []string{token},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sender.sent, 3)
	assert.Contains(t, sender.sent[2].HTMLContent, "123456789012")
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/orders"},
		{http.MethodGet, "/api/admin/token-index"},
		{http.MethodPost, "/api/admin/set-tracking"},
		{http.MethodGet, "/api/view/v_all_total"},
		{http.MethodPost, "/api/products/quick-add"},
	} {
		rec := doJSON(t, router, route.method, route.path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, route.path)
	}
}

func TestReadViewRejectsInvalidName(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/view/orders", nil, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Code)
	assert.Equal(t, "invalid view name", envelope.Error.Message)
}

func TestPublicReports(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"customer": map[string]any{"name": "佐藤太郎"},
		"items":    []map[string]any{{"productName": "パキラ", "unitPrice": 2000, "quantity": 1}},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/reports/all", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeData(t, rec)
	assert.Equal(t, float64(1), data["total_orders"])
	assert.Equal(t, float64(2000), data["total_amount"])

	rec = doJSON(t, router, http.MethodGet, "/api/reports/category", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuickAddProductOverHTTP(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/products/quick-add", map[string]any{
		"name": "アガベ チタノタ", "price": 9800, "category": "多肉植物",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "アガベ チタノタ", data["name"])

	rec = doJSON(t, router, http.MethodGet, "/api/products", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLegacyPaidEndpoint(t *testing.T) {
	router, conn, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/orders", map[string]any{
		"customer": map[string]any{"name": "山田花子"},
		"items":    []map[string]any{{"productName": "苔玉", "unitPrice": 1200, "quantity": 1}},
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	token := decodeData(t, rec)["orderToken"].(string)

	rec = doJSON(t, router, http.MethodPut, "/api/orders/"+token+"/paid", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var isPaid bool
	require.NoError(t, conn.Raw(`SELECT is_paid FROM orders WHERE order_token = ?`, token).Scan(&isPaid).Error)
	assert.True(t, isPaid)
}
