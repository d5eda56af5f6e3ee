package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	pkgpagination "github.com/channelworks/partnerhub-backend/pkg/pagination"
)

// Commission rates are percentages with three decimal places.
var maxCommissionRate = decimal.NewFromInt(100)

type productsRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, opts ListQuery) ([]models.Product, error)
	SetEligible(ctx context.Context, id uuid.UUID, eligible bool) error
}

// CreateProductInput holds the fields accepted when adding a catalog entry.
type CreateProductInput struct {
	SKU                string          `json:"sku" validate:"required"`
	Name               string          `json:"name" validate:"required"`
	Category           string          `json:"category" validate:"required"`
	Tags               []string        `json:"tags,omitempty"`
	BaseCommissionRate decimal.Decimal `json:"base_commission_rate"`
}

// ListParams filters the catalog listing.
type ListParams struct {
	Category     string
	EligibleOnly bool
	Limit        int
	Cursor       string
}

// ListResult pairs a catalog page with the cursor for the next page.
type ListResult struct {
	Items  []models.Product `json:"items"`
	Cursor string           `json:"cursor,omitempty"`
}

// Service exposes catalog administration and browsing.
type Service interface {
	CreateProduct(ctx context.Context, actorRole enums.ActorRole, input CreateProductInput) (*models.Product, error)
	ListProducts(ctx context.Context, params ListParams) (*ListResult, error)
	SetEligible(ctx context.Context, actorRole enums.ActorRole, productID uuid.UUID, eligible bool) error
}

type service struct {
	repo productsRepository
}

// NewService builds the catalog service.
func NewService(repo productsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, actorRole enums.ActorRole, input CreateProductInput) (*models.Product, error) {
	if actorRole != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage the catalog")
	}
	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.BaseCommissionRate.IsNegative() || input.BaseCommissionRate.GreaterThan(maxCommissionRate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_commission_rate must be between 0 and 100")
	}

	if _, err := s.repo.FindBySKU(ctx, sku); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup sku")
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	product := &models.Product{
		SKU:                sku,
		Name:               strings.TrimSpace(input.Name),
		Category:           strings.TrimSpace(input.Category),
		Tags:               pq.StringArray(tags),
		BaseCommissionRate: input.BaseCommissionRate,
		Eligible:           true,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) ListProducts(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListQuery{
		Category:     strings.TrimSpace(params.Category),
		EligibleOnly: params.EligibleOnly,
		Limit:        pkgpagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	limit := pkgpagination.NormalizeLimit(params.Limit)
	nextCursor := ""
	if len(rows) > limit {
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: rows[limit].CreatedAt,
			ID:        rows[limit].ID,
		})
		rows = rows[:limit]
	}
	return &ListResult{Items: rows, Cursor: nextCursor}, nil
}

func (s *service) SetEligible(ctx context.Context, actorRole enums.ActorRole, productID uuid.UUID, eligible bool) error {
	if actorRole != enums.ActorRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can manage the catalog")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	if err := s.repo.SetEligible(ctx, productID, eligible); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product eligibility")
	}
	return nil
}
