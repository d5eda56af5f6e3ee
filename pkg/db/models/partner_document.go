package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// PartnerDocument is append-only metadata for an uploaded blob. Rows are only
// written after the blob is confirmed present in object storage.
type PartnerDocument struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerID    uuid.UUID          `gorm:"column:partner_id;type:uuid;not null;index" json:"partner_id"`
	DocumentType enums.DocumentType `gorm:"column:document_type;type:document_type;not null" json:"document_type"`
	DocumentName string             `gorm:"column:document_name;not null" json:"document_name"`
	StorageKey   string             `gorm:"column:storage_key;not null;uniqueIndex" json:"storage_key"`
	FileSize     int64              `gorm:"column:file_size;not null" json:"file_size"`
	MimeType     string             `gorm:"column:mime_type;not null" json:"mime_type"`
	UploadedBy   uuid.UUID          `gorm:"column:uploaded_by;type:uuid;not null" json:"uploaded_by"`
	Verified     bool               `gorm:"column:verified;not null;default:false" json:"verified"`
	VerifiedBy   *uuid.UUID         `gorm:"column:verified_by;type:uuid" json:"verified_by,omitempty"`
	VerifiedAt   *time.Time         `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
