package notify

import (
	"context"
	"time"

	"github.com/nurserysera/storefront-backend/pkg/brevo"
	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
	"github.com/nurserysera/storefront-backend/pkg/metrics"
	"go.uber.org/multierr"
)

type orderLoader interface {
	FindByToken(ctx context.Context, token string) ([]models.Order, error)
}

type mailSender interface {
	Send(ctx context.Context, msg brevo.Message) (string, error)
}

// Outcomes of one dispatch attempt.
const (
	OutcomeSent    = "sent"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Result reports what happened to one token's dispatch.
type Result struct {
	Token   string `json:"token"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// SendOptions carries per-event extras.
type SendOptions struct {
	ShipDate string
	Carrier  string
}

// Service drives the reserve -> render -> dispatch -> mark flow. A dispatch
// failure is recorded in the ledger and never propagated to the triggering
// request.
type Service interface {
	Send(ctx context.Context, token, eventType string, opts SendOptions) Result
	SendBatch(ctx context.Context, tokens []string, eventType string, opts SendOptions) ([]Result, error)
}

type service struct {
	ledger      Ledger
	orders      orderLoader
	sender      mailSender
	logg        *logger.Logger
	metrics     *metrics.NotifyMetrics
	truncateLen int
}

// NewService wires the notification dispatcher.
func NewService(ledger Ledger, orders orderLoader, sender mailSender, logg *logger.Logger, m *metrics.NotifyMetrics, truncateLen int) (Service, error) {
	if ledger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification ledger required")
	}
	if orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order loader required")
	}
	if sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mail sender required")
	}
	if truncateLen <= 0 {
		truncateLen = 500
	}
	return &service{
		ledger:      ledger,
		orders:      orders,
		sender:      sender,
		logg:        logg,
		metrics:     m,
		truncateLen: truncateLen,
	}, nil
}

func (s *service) Send(ctx context.Context, token, eventType string, opts SendOptions) Result {
	if s.logg != nil {
		ctx = s.logg.WithOrderToken(ctx, token)
		ctx = s.logg.WithEventType(ctx, eventType)
	}
	start := time.Now()
	result := s.dispatch(ctx, token, eventType, opts)
	s.metrics.ObserveDuration(eventType, time.Since(start))

	switch result.Outcome {
	case OutcomeSent:
		s.metrics.IncSent(eventType)
		if s.logg != nil {
			s.logg.Info(ctx, "notification sent")
		}
	case OutcomeSkipped:
		s.metrics.IncSkipped(eventType)
		if s.logg != nil {
			s.logg.Info(ctx, "notification skipped, ledger already holds event")
		}
	case OutcomeFailed:
		s.metrics.IncFailed(eventType)
		if s.logg != nil {
			s.logg.Warn(ctx, "notification failed: "+result.Error)
		}
	}
	return result
}

func (s *service) dispatch(ctx context.Context, token, eventType string, opts SendOptions) Result {
	rows, err := s.orders.FindByToken(ctx, token)
	if err != nil {
		return Result{Token: token, Outcome: OutcomeFailed, Error: s.truncate(err.Error())}
	}
	if len(rows) == 0 {
		return Result{Token: token, Outcome: OutcomeFailed, Error: "order not found"}
	}

	reservation, err := s.ledger.Reserve(ctx, token, eventType)
	if err != nil {
		return Result{Token: token, Outcome: OutcomeFailed, Error: s.truncate(err.Error())}
	}
	if reservation == nil {
		return Result{Token: token, Outcome: OutcomeSkipped}
	}

	msg, err := renderMessage(eventType, rows, renderContext{ShipDate: opts.ShipDate, Carrier: opts.Carrier})
	if err != nil {
		return s.fail(ctx, token, eventType, err.Error())
	}
	if msg.ToEmail == "" {
		return s.fail(ctx, token, eventType, "no recipient email on order")
	}

	providerID, err := s.sender.Send(ctx, msg)
	if err != nil {
		return s.fail(ctx, token, eventType, err.Error())
	}

	if err := s.ledger.MarkSent(ctx, reservation.ID, providerID); err != nil {
		// The provider accepted the message; record the bookkeeping error
		// without pretending the send failed.
		if s.logg != nil {
			s.logg.Error(ctx, "mark sent failed after provider accepted message", err)
		}
	}
	return Result{Token: token, Outcome: OutcomeSent}
}

func (s *service) fail(ctx context.Context, token, eventType, reason string) Result {
	reason = s.truncate(reason)
	if err := s.ledger.MarkFailed(ctx, token, eventType, reason); err != nil && s.logg != nil {
		s.logg.Error(ctx, "mark failed did not persist", err)
	}
	return Result{Token: token, Outcome: OutcomeFailed, Error: reason}
}

// SendBatch processes tokens sequentially; one token's failure is recorded and
// does not abort the rest. The aggregated error is informational for logging.
func (s *service) SendBatch(ctx context.Context, tokens []string, eventType string, opts SendOptions) ([]Result, error) {
	results := make([]Result, 0, len(tokens))
	var errs error
	for _, token := range tokens {
		result := s.Send(ctx, token, eventType, opts)
		results = append(results, result)
		if result.Outcome == OutcomeFailed {
			errs = multierr.Append(errs, pkgerrors.New(pkgerrors.CodeDependency, token+": "+result.Error))
		}
	}
	return results, errs
}

func (s *service) truncate(msg string) string {
	if len(msg) <= s.truncateLen {
		return msg
	}
	return msg[:s.truncateLen]
}
