package notify

import (
	"context"
	"time"

	"github.com/nurserysera/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger persists the email idempotency rows. Reserve is the single
// synchronization point for every send path: the unique key on
// (order_token, event_type) acts as the lock, so no in-memory coordination is
// needed even across processes.
type Ledger interface {
	WithTx(tx *gorm.DB) Ledger
	Reserve(ctx context.Context, token, eventType string) (*models.EmailEvent, error)
	MarkSent(ctx context.Context, id int64, providerMessageID string) error
	MarkFailed(ctx context.Context, token, eventType, errMsg string) error
	Find(ctx context.Context, token, eventType string) (*models.EmailEvent, error)
}

type ledgerImpl struct {
	db *gorm.DB
}

// NewLedger returns a ledger bound to the provided database.
func NewLedger(db *gorm.DB) Ledger {
	return &ledgerImpl{db: db}
}

func (l *ledgerImpl) WithTx(tx *gorm.DB) Ledger {
	if tx == nil {
		return l
	}
	return &ledgerImpl{db: tx}
}

// Reserve returns the reservation row, or nil when the event is already
// reserved or sent. A row stuck in `failed` is flipped back to `reserved`
// atomically; a `sent` row blocks forever.
func (l *ledgerImpl) Reserve(ctx context.Context, token, eventType string) (*models.EmailEvent, error) {
	event := &models.EmailEvent{
		OrderToken: token,
		EventType:  eventType,
		Status:     models.EmailEventReserved,
	}
	res := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_token"}, {Name: "event_type"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return event, nil
	}

	// The row exists. Only a failed attempt may be re-reserved; the WHERE
	// clause keeps this race-safe without reading first.
	upd := l.db.WithContext(ctx).
		Model(&models.EmailEvent{}).
		Where("order_token = ? AND event_type = ? AND status = ?", token, eventType, models.EmailEventFailed).
		Updates(map[string]any{
			"status":     models.EmailEventReserved,
			"updated_at": time.Now().UTC(),
		})
	if upd.Error != nil {
		return nil, upd.Error
	}
	if upd.RowsAffected == 0 {
		return nil, nil
	}
	return l.Find(ctx, token, eventType)
}

func (l *ledgerImpl) MarkSent(ctx context.Context, id int64, providerMessageID string) error {
	now := time.Now().UTC()
	return l.db.WithContext(ctx).
		Model(&models.EmailEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":              models.EmailEventSent,
			"provider_message_id": providerMessageID,
			"sent_at":             now,
			"updated_at":          now,
		}).Error
}

func (l *ledgerImpl) MarkFailed(ctx context.Context, token, eventType, errMsg string) error {
	return l.db.WithContext(ctx).
		Model(&models.EmailEvent{}).
		Where("order_token = ? AND event_type = ?", token, eventType).
		Updates(map[string]any{
			"status":     models.EmailEventFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"error":      errMsg,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (l *ledgerImpl) Find(ctx context.Context, token, eventType string) (*models.EmailEvent, error) {
	var event models.EmailEvent
	err := l.db.WithContext(ctx).
		Where("order_token = ? AND event_type = ?", token, eventType).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
