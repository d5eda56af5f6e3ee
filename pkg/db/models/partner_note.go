package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// PartnerNote is an append-only annotation on a partner record.
type PartnerNote struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerID     uuid.UUID            `gorm:"column:partner_id;type:uuid;not null;index" json:"partner_id"`
	Note          string               `gorm:"column:note;not null" json:"note"`
	Visibility    enums.NoteVisibility `gorm:"column:visibility;type:note_visibility;not null;default:internal" json:"visibility"`
	CreatedBy     uuid.UUID            `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedByName string               `gorm:"column:created_by_name;not null" json:"created_by_name"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
