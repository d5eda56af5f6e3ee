package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	pkgpagination "github.com/channelworks/partnerhub-backend/pkg/pagination"
)

// Repository owns catalog reads and writes.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a product repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a catalog entry.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindByID loads one product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products for a set of IDs, in no particular order.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindBySKU loads a product by its unique SKU.
func (r *Repository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListQuery filters the catalog listing.
type ListQuery struct {
	Category     string
	EligibleOnly bool
	Limit        int
	Cursor       *pkgpagination.Cursor
}

// List returns catalog entries using cursor pagination.
func (r *Repository) List(ctx context.Context, opts ListQuery) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}
	if opts.EligibleOnly {
		query = query.Where("eligible = ?", true)
	}
	if opts.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			opts.Cursor.CreatedAt, opts.Cursor.CreatedAt, opts.Cursor.ID,
		)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.Limit)

	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SetEligible flips a product's assignability.
func (r *Repository) SetEligible(ctx context.Context, id uuid.UUID, eligible bool) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("eligible", eligible)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
