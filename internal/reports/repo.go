package reports

import (
	"context"
	"time"

	"github.com/nurserysera/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

type CategorySummary struct {
	Category    string `gorm:"column:category" json:"category"`
	TotalQty    int64  `gorm:"column:total_qty" json:"total_qty"`
	TotalAmount int64  `gorm:"column:total_amount" json:"total_amount"`
}

type AllTotal struct {
	TotalAmount int64 `gorm:"column:total_amount" json:"total_amount"`
	TotalOrders int64 `gorm:"column:total_orders" json:"total_orders"`
}

type TokenIndexEntry struct {
	CustomerName string    `gorm:"column:customer_name" json:"customer_name"`
	AddressFull  string    `gorm:"column:address_full" json:"address_full"`
	OrderToken   string    `gorm:"column:order_token" json:"order_token"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

type TokenUnitsSummary struct {
	OrderToken string `gorm:"column:order_token" json:"order_token"`
	TotalUnits int64  `gorm:"column:total_units" json:"total_units"`
	PaidUnits  int64  `gorm:"column:paid_units" json:"paid_units"`
}

type ProductUnitsSummary struct {
	ProductName string `gorm:"column:product_name" json:"product_name"`
	TotalUnits  int64  `gorm:"column:total_units" json:"total_units"`
	PaidUnits   int64  `gorm:"column:paid_units" json:"paid_units"`
}

// Repository runs the read-only admin and report queries. The queries stay
// portable across postgres and sqlite so the same code backs production and
// the in-memory tests.
type Repository interface {
	CategorySummary(ctx context.Context) ([]CategorySummary, error)
	AllTotal(ctx context.Context) (*AllTotal, error)
	TokenIndex(ctx context.Context) ([]TokenIndexEntry, error)
	UnitsSummaryByToken(ctx context.Context) ([]TokenUnitsSummary, error)
	UnitsSummaryByProduct(ctx context.Context) ([]ProductUnitsSummary, error)
	OrderList(ctx context.Context) ([]models.Order, error)
	OrderItems(ctx context.Context, token string) ([]models.Order, error)
	ReadView(ctx context.Context, name string) ([]map[string]any, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CategorySummary(ctx context.Context) ([]CategorySummary, error) {
	var rows []CategorySummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(p.category, 'uncategorized') AS category,
			SUM(o.quantity) AS total_qty,
			SUM(o.line_total) AS total_amount
		FROM orders o
		LEFT JOIN products p ON p.id = o.product_id
		GROUP BY COALESCE(p.category, 'uncategorized')
		ORDER BY total_amount DESC`).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) AllTotal(ctx context.Context) (*AllTotal, error) {
	var row AllTotal
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(t.total), 0) AS total_amount, COUNT(*) AS total_orders
		FROM (
			SELECT order_token, MAX(total) AS total
			FROM orders
			GROUP BY order_token
		) t`).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// TokenIndex returns the most recent token per (name, address) pair; repeat
// customers resolve to their latest checkout.
func (r *repositoryImpl) TokenIndex(ctx context.Context) ([]TokenIndexEntry, error) {
	var rows []TokenIndexEntry
	err := r.db.WithContext(ctx).Raw(`
		SELECT customer_name, address_full, order_token, created_at
		FROM (
			SELECT
				customer_name, address_full, order_token, created_at,
				ROW_NUMBER() OVER (
					PARTITION BY customer_name, address_full
					ORDER BY created_at DESC, id DESC
				) AS rn
			FROM orders
		) ranked
		WHERE rn = 1
		ORDER BY created_at DESC`).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) UnitsSummaryByToken(ctx context.Context) ([]TokenUnitsSummary, error) {
	var rows []TokenUnitsSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			order_token,
			COUNT(*) AS total_units,
			SUM(CASE WHEN is_paid THEN 1 ELSE 0 END) AS paid_units
		FROM order_units
		GROUP BY order_token
		ORDER BY order_token`).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) UnitsSummaryByProduct(ctx context.Context) ([]ProductUnitsSummary, error) {
	var rows []ProductUnitsSummary
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			o.product_name,
			COUNT(u.id) AS total_units,
			SUM(CASE WHEN u.is_paid THEN 1 ELSE 0 END) AS paid_units
		FROM order_units u
		JOIN orders o ON o.id = u.order_id
		GROUP BY o.product_name
		ORDER BY o.product_name`).Scan(&rows).Error
	return rows, err
}

// OrderList returns one representative row per checkout token, newest first.
func (r *repositoryImpl) OrderList(ctx context.Context) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.*
		FROM orders o
		JOIN (
			SELECT order_token, MIN(id) AS id
			FROM orders
			GROUP BY order_token
		) heads ON heads.id = o.id
		ORDER BY o.created_at DESC, o.id DESC`).Scan(&rows).Error
	return rows, err
}

func (r *repositoryImpl) OrderItems(ctx context.Context, token string) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("order_token = ?", token).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// ReadView selects everything from a database view. Name validation happens in
// the service; the identifier cannot be bound as a parameter.
func (r *repositoryImpl) ReadView(ctx context.Context, name string) ([]map[string]any, error) {
	var rows []map[string]any
	err := r.db.WithContext(ctx).Raw("SELECT * FROM " + name).Scan(&rows).Error
	return rows, err
}
