package partners

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/internal/audit"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgpagination "github.com/channelworks/partnerhub-backend/pkg/pagination"
)

// ErrStatusChanged signals that the partner moved out of the expected status
// between read and write. Callers surface it as a concurrency conflict.
var ErrStatusChanged = errors.New("partner status changed concurrently")

// Repository owns all partner mutation. Status changes only happen through
// Transition, which applies the compare-and-swap guard.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a partner repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TransitionInput bundles everything one workflow step writes atomically.
type TransitionInput struct {
	PartnerID uuid.UUID
	// Expected is the status the caller observed; the update is fenced on it.
	Expected enums.PartnerStatus
	// Updates are the column changes to apply, including the new status.
	Updates map[string]any
	// Steps are appended to the approval history inside the transaction.
	Steps []models.PartnerApprovalStep
	// Notes are appended alongside the transition, e.g. the partner-visible
	// feedback a send-back carries.
	Notes []models.PartnerNote
	// Audit is recorded in the same transaction; resource fields are filled in here.
	Audit *audit.Entry
	// ActivateOwner / DeactivateOwner flip the owning user's is_active flag.
	ActivateOwner   bool
	DeactivateOwner bool
}

// Create inserts a new partner row and derives its initial progress.
func (r *Repository) Create(ctx context.Context, partner *models.Partner, entry *audit.Entry) (*models.Partner, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(partner).Error; err != nil {
			return err
		}
		if err := recomputeProgress(tx, partner.ID); err != nil {
			return err
		}
		if entry != nil {
			entry.ResourceType = audit.ResourceTypePartner
			entry.ResourceID = partner.ID
			if err := audit.Record(tx, *entry); err != nil {
				return err
			}
		}
		return tx.First(partner, "id = ?", partner.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return partner, nil
}

// FindByID loads one partner row.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).First(&partner, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}

// FindByOwner loads the partner owned by the given user, newest first when
// the user somehow owns several.
func (r *Repository) FindByOwner(ctx context.Context, ownerUserID uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.WithContext(ctx).
		Where("owner_user_id = ?", ownerUserID).
		Order("created_at DESC").
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

// ListQuery filters the partner directory.
type ListQuery struct {
	Statuses    []enums.PartnerStatus
	OwnerUserID *uuid.UUID
	Limit       int
	Cursor      *pkgpagination.Cursor
}

// List returns partners matching the query using cursor pagination.
func (r *Repository) List(ctx context.Context, opts ListQuery) ([]models.Partner, error) {
	query := r.db.WithContext(ctx).Model(&models.Partner{})

	if len(opts.Statuses) > 0 {
		query = query.Where("status IN ?", opts.Statuses)
	}
	if opts.OwnerUserID != nil {
		query = query.Where("owner_user_id = ?", *opts.OwnerUserID)
	}
	if opts.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			opts.Cursor.CreatedAt, opts.Cursor.CreatedAt, opts.Cursor.ID,
		)
	}

	query = query.Order("created_at DESC").Order("id DESC").Limit(opts.Limit)

	var rows []models.Partner
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateProfile applies profile corrections without touching workflow state.
// The status fence still applies so reviews cannot race a transition.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, expected enums.PartnerStatus, updates map[string]any, entry *audit.Entry) (*models.Partner, error) {
	return r.transition(ctx, TransitionInput{
		PartnerID: id,
		Expected:  expected,
		Updates:   updates,
		Audit:     entry,
	})
}

// Transition applies one workflow step: the fenced status update, appended
// approval steps, owner activation, progress recomputation, and the audit
// entry all commit or roll back together.
func (r *Repository) Transition(ctx context.Context, input TransitionInput) (*models.Partner, error) {
	return r.transition(ctx, input)
}

func (r *Repository) transition(ctx context.Context, input TransitionInput) (*models.Partner, error) {
	var updated models.Partner

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Partner{}).
			Where("id = ? AND status = ?", input.PartnerID, input.Expected).
			Updates(input.Updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Distinguish a vanished row from a lost race.
			var count int64
			if err := tx.Model(&models.Partner{}).Where("id = ?", input.PartnerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrStatusChanged
		}

		for i := range input.Steps {
			step := input.Steps[i]
			step.PartnerID = input.PartnerID
			if err := tx.Create(&step).Error; err != nil {
				return err
			}
		}

		for i := range input.Notes {
			note := input.Notes[i]
			note.PartnerID = input.PartnerID
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}

		if input.ActivateOwner || input.DeactivateOwner {
			if err := setOwnerActive(tx, input.PartnerID, input.ActivateOwner); err != nil {
				return err
			}
		}

		if err := recomputeProgress(tx, input.PartnerID); err != nil {
			return err
		}

		if err := tx.First(&updated, "id = ?", input.PartnerID).Error; err != nil {
			return err
		}

		if input.Audit != nil {
			entry := *input.Audit
			entry.ResourceType = audit.ResourceTypePartner
			entry.ResourceID = input.PartnerID
			entry.After = Snapshot(&updated)
			if err := audit.Record(tx, entry); err != nil {
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

// RecomputeProgressTx re-derives onboarding progress on an existing
// transaction, for callers that change documents or commission assignments
// alongside other writes.
func RecomputeProgressTx(tx *gorm.DB, partnerID uuid.UUID) error {
	return recomputeProgress(tx, partnerID)
}

// RecomputeProgress re-derives onboarding progress outside a workflow step,
// e.g. after a document upload or commission assignment.
func (r *Repository) RecomputeProgress(ctx context.Context, partnerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recomputeProgress(tx, partnerID)
	})
}

// ListApprovalSteps returns the full approval history, oldest first.
func (r *Repository) ListApprovalSteps(ctx context.Context, partnerID uuid.UUID) ([]models.PartnerApprovalStep, error) {
	var rows []models.PartnerApprovalStep
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func setOwnerActive(tx *gorm.DB, partnerID uuid.UUID, active bool) error {
	var partner models.Partner
	if err := tx.Select("owner_user_id").First(&partner, "id = ?", partnerID).Error; err != nil {
		return err
	}
	if partner.OwnerUserID == nil {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", *partner.OwnerUserID).
		Update("is_active", active).Error
}

func recomputeProgress(tx *gorm.DB, partnerID uuid.UUID) error {
	var partner models.Partner
	if err := tx.First(&partner, "id = ?", partnerID).Error; err != nil {
		return err
	}

	var documentCount int64
	if err := tx.Model(&models.PartnerDocument{}).Where("partner_id = ?", partnerID).Count(&documentCount).Error; err != nil {
		return err
	}
	var commissionCount int64
	if err := tx.Model(&models.PartnerProductCommission{}).Where("partner_id = ?", partnerID).Count(&commissionCount).Error; err != nil {
		return err
	}

	progress := DeriveProgress(&partner, documentCount, commissionCount)
	if progress == partner.OnboardingProgress {
		return nil
	}
	return tx.Model(&models.Partner{}).
		Where("id = ?", partnerID).
		Update("onboarding_progress", progress).Error
}

// Snapshot captures the audit-relevant lifecycle fields of a partner.
func Snapshot(p *models.Partner) map[string]any {
	if p == nil {
		return nil
	}
	snapshot := map[string]any{
		"status":               p.Status,
		"onboarding_progress":  p.OnboardingProgress,
		"rejection_count":      p.RejectionCount,
		"resubmission_count":   p.ResubmissionCount,
		"permanently_rejected": p.PermanentlyRejected,
	}
	if p.Tier != nil {
		snapshot["tier"] = *p.Tier
	}
	if p.RejectedLevel != nil {
		snapshot["rejected_level"] = *p.RejectedLevel
	}
	if p.StatusBeforeHold != nil {
		snapshot["status_before_hold"] = *p.StatusBeforeHold
	}
	return snapshot
}
