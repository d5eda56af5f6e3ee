package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// Partner is the aggregate root of the onboarding lifecycle. Status changes
// go through the workflow engine only; every other column is data.
type Partner struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerUserID   *uuid.UUID      `gorm:"column:owner_user_id;type:uuid" json:"owner_user_id,omitempty"`
	CreatedBy     uuid.UUID       `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedByRole enums.ActorRole `gorm:"column:created_by_role;type:actor_role;not null" json:"created_by_role"`

	CompanyName           string           `gorm:"column:company_name;not null" json:"company_name"`
	BusinessType          string           `gorm:"column:business_type;not null" json:"business_type"`
	TaxID                 *string          `gorm:"column:tax_id" json:"tax_id,omitempty"`
	YearsInBusiness       *int             `gorm:"column:years_in_business" json:"years_in_business,omitempty"`
	EmployeeCount         *int             `gorm:"column:employee_count" json:"employee_count,omitempty"`
	ExpectedMonthlyVolume *decimal.Decimal `gorm:"column:expected_monthly_volume;type:numeric(14,2)" json:"expected_monthly_volume,omitempty"`
	BusinessAddress       *string          `gorm:"column:business_address" json:"business_address,omitempty"`
	Website               *string          `gorm:"column:website" json:"website,omitempty"`
	ContactName           string           `gorm:"column:contact_name;not null" json:"contact_name"`
	ContactEmail          string           `gorm:"column:contact_email;not null" json:"contact_email"`
	ContactPhone          *string          `gorm:"column:contact_phone" json:"contact_phone,omitempty"`
	ContactDesignation    *string          `gorm:"column:contact_designation" json:"contact_designation,omitempty"`

	Status             enums.PartnerStatus `gorm:"column:status;type:partner_status;not null;default:draft" json:"status"`
	Tier               *enums.PartnerTier  `gorm:"column:tier;type:partner_tier" json:"tier,omitempty"`
	TierAssignedBy     *uuid.UUID          `gorm:"column:tier_assigned_by;type:uuid" json:"tier_assigned_by,omitempty"`
	OnboardingProgress int                 `gorm:"column:onboarding_progress;not null;default:0" json:"onboarding_progress"`
	PayoutPeriod       *enums.PayoutPeriod `gorm:"column:payout_period;type:payout_period" json:"payout_period,omitempty"`

	RejectionReason         *string               `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`
	RejectedLevel           *enums.RejectionLevel `gorm:"column:rejected_level;type:rejection_level" json:"rejected_level,omitempty"`
	RejectedBy              *uuid.UUID            `gorm:"column:rejected_by;type:uuid" json:"rejected_by,omitempty"`
	RejectedByName          *string               `gorm:"column:rejected_by_name" json:"rejected_by_name,omitempty"`
	RejectedAt              *time.Time            `gorm:"column:rejected_at" json:"rejected_at,omitempty"`
	RejectionCount          int                   `gorm:"column:rejection_count;not null;default:0" json:"rejection_count"`
	PreviousRejectionReason *string               `gorm:"column:previous_rejection_reason" json:"previous_rejection_reason,omitempty"`
	PreviousRejectedLevel   *enums.RejectionLevel `gorm:"column:previous_rejected_level;type:rejection_level" json:"previous_rejected_level,omitempty"`
	ResubmissionCount       int                   `gorm:"column:resubmission_count;not null;default:0" json:"resubmission_count"`
	PermanentlyRejected     bool                  `gorm:"column:permanently_rejected;not null;default:false" json:"permanently_rejected"`

	HoldReason       *string              `gorm:"column:hold_reason" json:"hold_reason,omitempty"`
	HeldBy           *uuid.UUID           `gorm:"column:held_by;type:uuid" json:"held_by,omitempty"`
	HeldAt           *time.Time           `gorm:"column:held_at" json:"held_at,omitempty"`
	StatusBeforeHold *enums.PartnerStatus `gorm:"column:status_before_hold;type:partner_status" json:"status_before_hold,omitempty"`

	FeedbackMessage *string `gorm:"column:feedback_message" json:"feedback_message,omitempty"`

	SubmittedAt  *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	L1ApprovedAt *time.Time `gorm:"column:l1_approved_at" json:"l1_approved_at,omitempty"`
	L1ApprovedBy *uuid.UUID `gorm:"column:l1_approved_by;type:uuid" json:"l1_approved_by,omitempty"`
	L2ApprovedAt *time.Time `gorm:"column:l2_approved_at" json:"l2_approved_at,omitempty"`
	L2ApprovedBy *uuid.UUID `gorm:"column:l2_approved_by;type:uuid" json:"l2_approved_by,omitempty"`
	ApprovedAt   *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
