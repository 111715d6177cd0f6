package fulfillment

import (
	"context"
	"time"

	"github.com/nurserysera/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository mutates payment and shipping state. Header-level changes always
// go bulk-by-token so every wide row of a checkout stays consistent.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	SetOrdersPaid(ctx context.Context, token string, paid bool, paidAt *time.Time) (int64, error)
	SetUnitsPaid(ctx context.Context, token string, paid bool, paidAt *time.Time) (int64, error)
	SetUnitPaid(ctx context.Context, unitID int64, paid bool, paidAt *time.Time) (int64, error)
	SetTracking(ctx context.Context, token, trackingNo string) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) SetOrdersPaid(ctx context.Context, token string, paid bool, paidAt *time.Time) (int64, error) {
	status := models.OrderStatusPending
	if paid {
		status = models.OrderStatusPaid
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_token = ?", token).
		Updates(map[string]any{
			"is_paid":    paid,
			"paid_at":    paidAt,
			"status":     status,
			"updated_at": time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) SetUnitsPaid(ctx context.Context, token string, paid bool, paidAt *time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderUnit{}).
		Where("order_token = ?", token).
		Updates(map[string]any{
			"is_paid": paid,
			"paid_at": paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) SetUnitPaid(ctx context.Context, unitID int64, paid bool, paidAt *time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.OrderUnit{}).
		Where("id = ?", unitID).
		Updates(map[string]any{
			"is_paid": paid,
			"paid_at": paidAt,
		})
	return res.RowsAffected, res.Error
}

func (r *repositoryImpl) SetTracking(ctx context.Context, token, trackingNo string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_token = ?", token).
		Updates(map[string]any{
			"tracking_no": trackingNo,
			"updated_at":  time.Now().UTC(),
		})
	return res.RowsAffected, res.Error
}
