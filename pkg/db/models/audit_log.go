package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record written in the same transaction as the
// mutation it describes.
type AuditLog struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ActorID      uuid.UUID       `gorm:"column:actor_id;type:uuid;not null"`
	ActorRole    string          `gorm:"column:actor_role;not null"`
	Action       string          `gorm:"column:action;not null"`
	ResourceType string          `gorm:"column:resource_type;not null"`
	ResourceID   uuid.UUID       `gorm:"column:resource_id;type:uuid;not null;index"`
	StateBefore  json.RawMessage `gorm:"column:state_before;type:jsonb"`
	StateAfter   json.RawMessage `gorm:"column:state_after;type:jsonb"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}
