package commission

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/audit"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// Repository owns tier and commission-assignment writes. Both are fenced on
// the partner's status so they cannot race a workflow transition.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a commission repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AssignTier sets the partner's tier while it still holds the expected status.
func (r *Repository) AssignTier(ctx context.Context, partnerID uuid.UUID, expected enums.PartnerStatus, tier enums.PartnerTier, assignedBy uuid.UUID, entry *audit.Entry) (*models.Partner, error) {
	var updated models.Partner

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Partner{}).
			Where("id = ? AND status = ?", partnerID, expected).
			Updates(map[string]any{
				"tier":             tier,
				"tier_assigned_by": assignedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Partner{}).Where("id = ?", partnerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return partners.ErrStatusChanged
		}

		if err := partners.RecomputeProgressTx(tx, partnerID); err != nil {
			return err
		}
		if err := tx.First(&updated, "id = ?", partnerID).Error; err != nil {
			return err
		}
		if entry != nil {
			e := *entry
			e.ResourceType = audit.ResourceTypePartner
			e.ResourceID = partnerID
			e.After = partners.Snapshot(&updated)
			if err := audit.Record(tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ReplaceAssignments swaps the partner's full commission set and payout
// period in one transaction. Partial assignment never survives a failure.
func (r *Repository) ReplaceAssignments(ctx context.Context, partnerID uuid.UUID, expected enums.PartnerStatus, payout enums.PayoutPeriod, rows []models.PartnerProductCommission, entry *audit.Entry) (*models.Partner, error) {
	var updated models.Partner

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Partner{}).
			Where("id = ? AND status = ?", partnerID, expected).
			Update("payout_period", payout)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Partner{}).Where("id = ?", partnerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return partners.ErrStatusChanged
		}

		if err := tx.Where("partner_id = ?", partnerID).Delete(&models.PartnerProductCommission{}).Error; err != nil {
			return err
		}
		for i := range rows {
			row := rows[i]
			row.PartnerID = partnerID
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		if err := partners.RecomputeProgressTx(tx, partnerID); err != nil {
			return err
		}
		if err := tx.First(&updated, "id = ?", partnerID).Error; err != nil {
			return err
		}
		if entry != nil {
			e := *entry
			e.ResourceType = audit.ResourceTypePartner
			e.ResourceID = partnerID
			e.After = partners.Snapshot(&updated)
			if err := audit.Record(tx, e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ListAssignments returns the partner's current commission set.
func (r *Repository) ListAssignments(ctx context.Context, partnerID uuid.UUID) ([]models.PartnerProductCommission, error) {
	var rows []models.PartnerProductCommission
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("product_name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
