package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// PartnerApprovalStep is an append-only record of a review decision. The
// current state of a level is the most recent row for that level.
type PartnerApprovalStep struct {
	ID              uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PartnerID       uuid.UUID                `gorm:"column:partner_id;type:uuid;not null;index" json:"partner_id"`
	Level           enums.ApprovalLevel      `gorm:"column:level;not null" json:"level"`
	Status          enums.ApprovalStepStatus `gorm:"column:status;type:approval_step_status;not null" json:"status"`
	ApproverID      *uuid.UUID               `gorm:"column:approver_id;type:uuid" json:"approver_id,omitempty"`
	ApproverName    *string                  `gorm:"column:approver_name" json:"approver_name,omitempty"`
	Comments        *string                  `gorm:"column:comments" json:"comments,omitempty"`
	RejectionReason *string                  `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time               `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
