package audit

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
)

// ResourceTypePartner is the resource label used for partner lifecycle entries.
const ResourceTypePartner = "partner"

// Entry describes one auditable mutation.
type Entry struct {
	ActorID      uuid.UUID
	ActorRole    string
	Action       string
	ResourceType string
	ResourceID   uuid.UUID
	Before       any
	After        any
}

// Record appends the entry on the provided transaction so the audit row
// commits atomically with the mutation it describes.
func Record(tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return fmt.Errorf("transaction is required")
	}
	if entry.ActorID == uuid.Nil {
		return fmt.Errorf("actor id is required")
	}
	if entry.Action == "" || entry.ResourceType == "" {
		return fmt.Errorf("action and resource type are required")
	}

	row := models.AuditLog{
		ActorID:      entry.ActorID,
		ActorRole:    entry.ActorRole,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
	}

	var err error
	if row.StateBefore, err = marshalState(entry.Before); err != nil {
		return fmt.Errorf("marshal state before: %w", err)
	}
	if row.StateAfter, err = marshalState(entry.After); err != nil {
		return fmt.Errorf("marshal state after: %w", err)
	}

	return tx.Create(&row).Error
}

func marshalState(state any) (json.RawMessage, error) {
	if state == nil {
		return nil, nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// List returns the audit trail for one resource, oldest first.
func List(tx *gorm.DB, resourceType string, resourceID uuid.UUID) ([]models.AuditLog, error) {
	var rows []models.AuditLog
	err := tx.
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
