package notes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// Repository persists partner notes. Notes are append only; there is no
// update or delete path.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a notes repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts one note and returns the persisted row.
func (r *Repository) Create(ctx context.Context, note *models.PartnerNote) (*models.PartnerNote, error) {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// List returns a partner's notes, newest first. When visibilities is
// non-empty only matching notes are returned.
func (r *Repository) List(ctx context.Context, partnerID uuid.UUID, visibilities []enums.NoteVisibility) ([]models.PartnerNote, error) {
	query := r.db.WithContext(ctx).Where("partner_id = ?", partnerID)
	if len(visibilities) > 0 {
		query = query.Where("visibility IN ?", visibilities)
	}

	var rows []models.PartnerNote
	if err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
