package fulfillment

import (
	"context"
	"time"

	"github.com/nurserysera/storefront-backend/internal/notify"
	"github.com/nurserysera/storefront-backend/pkg/db"
	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type paidNoticeSender interface {
	Send(ctx context.Context, token, eventType string, opts notify.SendOptions) notify.Result
}

// Service toggles payment state and tracking numbers. The paid notice rides on
// the notification ledger, so concurrent or repeated toggles send at most one
// mail per checkout.
type Service interface {
	SetPaid(ctx context.Context, token string, paid bool) error
	SetUnitPaid(ctx context.Context, unitID int64, paid bool) error
	SetTracking(ctx context.Context, token, trackingNo string) (int64, error)
}

type service struct {
	client   *db.Client
	repo     Repository
	notifier paidNoticeSender
	logg     *logger.Logger
}

// NewService wires the fulfillment operations. notifier may be nil when
// outbound mail is not configured.
func NewService(client *db.Client, repo Repository, notifier paidNoticeSender, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "db client required")
	}
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "fulfillment repository required")
	}
	return &service{client: client, repo: repo, notifier: notifier, logg: logg}, nil
}

func (s *service) SetPaid(ctx context.Context, token string, paid bool) error {
	var paidAt *time.Time
	if paid {
		now := time.Now().UTC()
		paidAt = &now
	}

	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		updated, err := repo.SetOrdersPaid(ctx, token, paid, paidAt)
		if err != nil {
			return err
		}
		if updated == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if _, err := repo.SetUnitsPaid(ctx, token, paid, paidAt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating payment state")
	}

	// Post-commit; the ledger's unique key guarantees at most one mail even
	// when two admins flip the flag at once.
	if paid && s.notifier != nil {
		s.notifier.Send(ctx, token, models.EventPaidNotice, notify.SendOptions{})
	}
	return nil
}

func (s *service) SetUnitPaid(ctx context.Context, unitID int64, paid bool) error {
	var paidAt *time.Time
	if paid {
		now := time.Now().UTC()
		paidAt = &now
	}

	updated, err := s.repo.SetUnitPaid(ctx, unitID, paid, paidAt)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating unit payment state")
	}
	if updated == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order unit not found")
	}
	return nil
}

func (s *service) SetTracking(ctx context.Context, token, trackingNo string) (int64, error) {
	if token == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order token is required")
	}
	if trackingNo == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "tracking number is required")
	}

	updated, err := s.repo.SetTracking(ctx, token, trackingNo)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating tracking number")
	}
	return updated, nil
}
