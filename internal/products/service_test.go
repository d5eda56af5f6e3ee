package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
)

type stubProductRepo struct {
	created      *models.Product
	createErr    error
	bySKU        *models.Product
	listRows     []models.Product
	listErr      error
	lastQuery    ListQuery
	eligibleErr  error
	lastEligible *bool
}

func (s *stubProductRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.created = product
	return product, nil
}

func (s *stubProductRepo) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	if s.bySKU == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.bySKU, nil
}

func (s *stubProductRepo) List(ctx context.Context, opts ListQuery) ([]models.Product, error) {
	s.lastQuery = opts
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listRows, nil
}

func (s *stubProductRepo) SetEligible(ctx context.Context, id uuid.UUID, eligible bool) error {
	if s.eligibleErr != nil {
		return s.eligibleErr
	}
	s.lastEligible = &eligible
	return nil
}

func newProductService(repo *stubProductRepo) (Service, *stubProductRepo) {
	if repo == nil {
		repo = &stubProductRepo{}
	}
	svc, err := NewService(repo)
	if err != nil {
		panic(err)
	}
	return svc, repo
}

func TestCreateProduct(t *testing.T) {
	svc, repo := newProductService(nil)

	created, err := svc.CreateProduct(context.Background(), enums.ActorRoleAdmin, CreateProductInput{
		SKU:                " SKU-100 ",
		Name:               "Enterprise License",
		Category:           "software",
		BaseCommissionRate: decimal.RequireFromString("12.5"),
	})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	if created.SKU != "SKU-100" {
		t.Fatalf("expected trimmed sku, got %q", created.SKU)
	}
	if !created.Eligible {
		t.Fatal("new products should be eligible")
	}
	if repo.created == nil {
		t.Fatal("expected product persisted")
	}
	if repo.created.Tags == nil {
		t.Fatal("expected non-nil tags array")
	}
}

func TestCreateProductAdminOnly(t *testing.T) {
	svc, _ := newProductService(nil)

	_, err := svc.CreateProduct(context.Background(), enums.ActorRolePartnerManager, CreateProductInput{
		SKU:      "SKU-100",
		Name:     "Enterprise License",
		Category: "software",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc, _ := newProductService(&stubProductRepo{bySKU: &models.Product{ID: uuid.New(), SKU: "SKU-100"}})

	_, err := svc.CreateProduct(context.Background(), enums.ActorRoleAdmin, CreateProductInput{
		SKU:      "SKU-100",
		Name:     "Enterprise License",
		Category: "software",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", err)
	}
}

func TestCreateProductRateBounds(t *testing.T) {
	svc, _ := newProductService(nil)

	_, err := svc.CreateProduct(context.Background(), enums.ActorRoleAdmin, CreateProductInput{
		SKU:                "SKU-100",
		Name:               "Enterprise License",
		Category:           "software",
		BaseCommissionRate: decimal.RequireFromString("101"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestListProductsPassesFilters(t *testing.T) {
	repo := &stubProductRepo{}
	svc, repo := newProductService(repo)

	if _, err := svc.ListProducts(context.Background(), ListParams{
		Category:     "software",
		EligibleOnly: true,
		Limit:        20,
	}); err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if repo.lastQuery.Category != "software" || !repo.lastQuery.EligibleOnly {
		t.Fatalf("unexpected query %+v", repo.lastQuery)
	}
	if repo.lastQuery.Limit != 21 {
		t.Fatalf("expected buffered limit 21, got %d", repo.lastQuery.Limit)
	}
}

func TestSetEligibleNotFound(t *testing.T) {
	svc, _ := newProductService(&stubProductRepo{eligibleErr: gorm.ErrRecordNotFound})

	err := svc.SetEligible(context.Background(), enums.ActorRoleAdmin, uuid.New(), false)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", err)
	}
}
