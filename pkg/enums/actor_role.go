package enums

import "fmt"

// ActorRole maps to the actor_role enum in Postgres.
type ActorRole string

const (
	ActorRoleAdmin          ActorRole = "admin"
	ActorRolePartnerManager ActorRole = "partner_manager"
	ActorRoleL1Approver     ActorRole = "l1_approver"
	ActorRoleL2Approver     ActorRole = "l2_approver"
	ActorRoleRep            ActorRole = "rep"
	ActorRolePartner        ActorRole = "partner"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRolePartnerManager,
	ActorRoleL1Approver,
	ActorRoleL2Approver,
	ActorRoleRep,
	ActorRolePartner,
}

// String implements fmt.Stringer.
func (a ActorRole) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorRole.
func (a ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == a {
			return true
		}
	}
	return false
}

// IsInternal reports whether the role belongs to staff rather than a partner.
func (a ActorRole) IsInternal() bool {
	return a.IsValid() && a != ActorRolePartner
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
