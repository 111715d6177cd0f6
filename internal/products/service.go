package products

import (
	"context"
	"strings"

	"github.com/nurserysera/storefront-backend/pkg/db/models"
	pkgerrors "github.com/nurserysera/storefront-backend/pkg/errors"
	"github.com/nurserysera/storefront-backend/pkg/types"
)

// QuickAddRequest is the minimal admin catalog insert.
type QuickAddRequest struct {
	Name     string        `json:"name" validate:"required"`
	Price    types.FlexInt `json:"price"`
	ImageURL string        `json:"imageUrl"`
	Category string        `json:"category"`
	SKU      string        `json:"sku"`
}

type Service interface {
	List(ctx context.Context) ([]models.Product, error)
	QuickAdd(ctx context.Context, req QuickAddRequest) (*models.Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return rows, nil
}

func (s *service) QuickAdd(ctx context.Context, req QuickAddRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	price := req.Price.Int64()
	if price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}

	product := models.Product{
		Name:     name,
		Price:    price,
		ImageURL: optional(req.ImageURL),
		Category: optional(req.Category),
		SKU:      optional(req.SKU),
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting product")
	}
	return &product, nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
