package documents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
)

// ErrAlreadyVerified signals a second verification attempt; verification is
// one way and never repeated.
var ErrAlreadyVerified = errors.New("document already verified")

// Repository owns partner document metadata. Rows only exist for blobs
// confirmed present in object storage.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a document repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts document metadata and refreshes the partner's progress.
func (r *Repository) Create(ctx context.Context, document *models.PartnerDocument) (*models.PartnerDocument, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(document).Error; err != nil {
			return err
		}
		return partners.RecomputeProgressTx(tx, document.PartnerID)
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}

// FindByID loads one document.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PartnerDocument, error) {
	var document models.PartnerDocument
	if err := r.db.WithContext(ctx).First(&document, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// List returns the partner's documents, newest first.
func (r *Repository) List(ctx context.Context, partnerID uuid.UUID) ([]models.PartnerDocument, error) {
	var rows []models.PartnerDocument
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Verify marks the document verified. The write is fenced on verified=false;
// a second attempt reports ErrAlreadyVerified.
func (r *Repository) Verify(ctx context.Context, id, verifiedBy uuid.UUID, at time.Time) (*models.PartnerDocument, error) {
	var document models.PartnerDocument

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.PartnerDocument{}).
			Where("id = ? AND verified = ?", id, false).
			Updates(map[string]any{
				"verified":    true,
				"verified_by": verifiedBy,
				"verified_at": at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.PartnerDocument{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrAlreadyVerified
		}
		return tx.First(&document, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &document, nil
}

// Delete removes document metadata and refreshes the partner's progress.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var document models.PartnerDocument
		if err := tx.First(&document, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PartnerDocument{}, "id = ?", id).Error; err != nil {
			return err
		}
		return partners.RecomputeProgressTx(tx, document.PartnerID)
	})
}
