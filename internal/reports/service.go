package reports

import (
	"context"
	"encoding/json"
	"regexp"
	"time"

	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/logger"
	"github.com/nurserysera/storefront-backend/pkg/redis"
)

var viewNamePattern = regexp.MustCompile(`^v_[a-z0-9_]+$`)

type Service interface {
	CategorySummary(ctx context.Context) ([]CategorySummary, error)
	AllTotal(ctx context.Context) (*AllTotal, error)
	TokenIndex(ctx context.Context) ([]TokenIndexEntry, error)
	UnitsSummaryByToken(ctx context.Context) ([]TokenUnitsSummary, error)
	UnitsSummaryByProduct(ctx context.Context) ([]ProductUnitsSummary, error)
	OrderList(ctx context.Context) ([]models.Order, error)
	OrderItems(ctx context.Context, token string) ([]models.Order, error)
	ReadView(ctx context.Context, name string) ([]map[string]any, error)
}

type service struct {
	repo  Repository
	cache redis.Cache
	ttl   time.Duration
	logg  *logger.Logger
}

// NewService wires the report queries. cache may be nil; the public reports
// then hit the database on every request.
func NewService(repo Repository, cache redis.Cache, ttl time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "report repository required")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &service{repo: repo, cache: cache, ttl: ttl, logg: logg}, nil
}

func (s *service) CategorySummary(ctx context.Context) ([]CategorySummary, error) {
	var rows []CategorySummary
	if hit := s.fromCache(ctx, "category", &rows); hit {
		return rows, nil
	}
	rows, err := s.repo.CategorySummary(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building category summary")
	}
	s.toCache(ctx, "category", rows)
	return rows, nil
}

func (s *service) AllTotal(ctx context.Context) (*AllTotal, error) {
	var cached AllTotal
	if hit := s.fromCache(ctx, "all", &cached); hit {
		return &cached, nil
	}
	row, err := s.repo.AllTotal(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building grand totals")
	}
	s.toCache(ctx, "all", row)
	return row, nil
}

func (s *service) TokenIndex(ctx context.Context) ([]TokenIndexEntry, error) {
	rows, err := s.repo.TokenIndex(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building token index")
	}
	return rows, nil
}

func (s *service) UnitsSummaryByToken(ctx context.Context) ([]TokenUnitsSummary, error) {
	rows, err := s.repo.UnitsSummaryByToken(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarizing units by token")
	}
	return rows, nil
}

func (s *service) UnitsSummaryByProduct(ctx context.Context) ([]ProductUnitsSummary, error) {
	rows, err := s.repo.UnitsSummaryByProduct(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarizing units by product")
	}
	return rows, nil
}

func (s *service) OrderList(ctx context.Context) ([]models.Order, error) {
	rows, err := s.repo.OrderList(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return rows, nil
}

func (s *service) OrderItems(ctx context.Context, token string) ([]models.Order, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order token is required")
	}
	rows, err := s.repo.OrderItems(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order items")
	}
	return rows, nil
}

func (s *service) ReadView(ctx context.Context, name string) ([]map[string]any, error) {
	if !viewNamePattern.MatchString(name) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid view name")
	}
	rows, err := s.repo.ReadView(ctx, name)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading view")
	}
	return rows, nil
}

// fromCache fills dest on a hit; cache errors degrade to a miss.
func (s *service) fromCache(ctx context.Context, name string, dest any) bool {
	if s.cache == nil {
		return false
	}
	payload, ok, err := s.cache.Get(ctx, s.cache.ReportKey(name))
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "report cache read failed: "+err.Error())
		}
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false
	}
	return true
}

func (s *service) toCache(ctx context.Context, name string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.ReportKey(name), string(payload), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "report cache write failed: "+err.Error())
	}
}
