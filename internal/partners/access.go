package partners

import (
	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
)

// Actor identifies who is performing an operation.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role enums.ActorRole
}

// Capability names one guarded operation class. Every handler resolves its
// capability through this table; there is no per-endpoint role logic.
type Capability string

const (
	// CapabilityManage covers lifecycle administration: creating partners,
	// profile review, tier/commission assignment, holds, send-backs,
	// permanent rejection, and document verification.
	CapabilityManage Capability = "manage"
	// CapabilityApproveL1 covers first-level review decisions.
	CapabilityApproveL1 Capability = "approve_l1"
	// CapabilityApproveL2 covers second-level review decisions.
	CapabilityApproveL2 Capability = "approve_l2"
	// CapabilityViewDirectory covers internal read access to all partners.
	CapabilityViewDirectory Capability = "view_directory"
)

var rolesByCapability = map[Capability][]enums.ActorRole{
	CapabilityManage: {
		enums.ActorRoleAdmin,
		enums.ActorRolePartnerManager,
	},
	CapabilityApproveL1: {
		enums.ActorRoleAdmin,
		enums.ActorRoleL1Approver,
	},
	CapabilityApproveL2: {
		enums.ActorRoleAdmin,
		enums.ActorRoleL2Approver,
	},
	CapabilityViewDirectory: {
		enums.ActorRoleAdmin,
		enums.ActorRolePartnerManager,
		enums.ActorRoleL1Approver,
		enums.ActorRoleL2Approver,
		enums.ActorRoleRep,
	},
}

// HasCapability reports whether the role carries the capability.
func HasCapability(role enums.ActorRole, capability Capability) bool {
	for _, candidate := range rolesByCapability[capability] {
		if candidate == role {
			return true
		}
	}
	return false
}

// RequireCapability returns a forbidden error when the actor lacks the capability.
func RequireCapability(actor Actor, capability Capability) error {
	if actor.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !HasCapability(actor.Role, capability) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role lacks required capability")
	}
	return nil
}

// Owns reports whether the actor is the partner-role owner of the record.
func Owns(actor Actor, partner *models.Partner) bool {
	if partner == nil || partner.OwnerUserID == nil {
		return false
	}
	return actor.Role == enums.ActorRolePartner && *partner.OwnerUserID == actor.ID
}

// CanRead reports whether the actor may see the partner record at all.
func CanRead(actor Actor, partner *models.Partner) bool {
	if HasCapability(actor.Role, CapabilityViewDirectory) {
		return true
	}
	return Owns(actor, partner)
}
