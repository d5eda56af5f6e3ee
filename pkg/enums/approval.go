package enums

import "fmt"

// ApprovalLevel identifies a review stage in the two-step workflow.
type ApprovalLevel int

const (
	ApprovalLevelL1 ApprovalLevel = 1
	ApprovalLevelL2 ApprovalLevel = 2
)

// IsValid reports whether the level is a known review stage.
func (a ApprovalLevel) IsValid() bool {
	return a == ApprovalLevelL1 || a == ApprovalLevelL2
}

// ApprovalStepStatus maps to the approval_step_status enum in Postgres.
type ApprovalStepStatus string

const (
	ApprovalStepStatusPending  ApprovalStepStatus = "pending"
	ApprovalStepStatusApproved ApprovalStepStatus = "approved"
	ApprovalStepStatusRejected ApprovalStepStatus = "rejected"
)

var validApprovalStepStatuses = []ApprovalStepStatus{
	ApprovalStepStatusPending,
	ApprovalStepStatusApproved,
	ApprovalStepStatusRejected,
}

// String implements fmt.Stringer.
func (a ApprovalStepStatus) String() string {
	return string(a)
}

// IsValid reports whether the value matches the canonical approval_step_status enum.
func (a ApprovalStepStatus) IsValid() bool {
	for _, candidate := range validApprovalStepStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApprovalStepStatus converts raw input into ApprovalStepStatus.
func ParseApprovalStepStatus(value string) (ApprovalStepStatus, error) {
	for _, candidate := range validApprovalStepStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval step status %q", value)
}
