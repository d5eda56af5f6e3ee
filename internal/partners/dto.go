package partners

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
)

// CreatePartnerInput holds the fields accepted when registering a partner.
type CreatePartnerInput struct {
	OwnerUserID           *uuid.UUID       `json:"owner_user_id,omitempty"`
	CompanyName           string           `json:"company_name" validate:"required"`
	BusinessType          string           `json:"business_type" validate:"required"`
	TaxID                 *string          `json:"tax_id,omitempty"`
	YearsInBusiness       *int             `json:"years_in_business,omitempty"`
	EmployeeCount         *int             `json:"employee_count,omitempty"`
	ExpectedMonthlyVolume *decimal.Decimal `json:"expected_monthly_volume,omitempty"`
	BusinessAddress       *string          `json:"business_address,omitempty"`
	Website               *string          `json:"website,omitempty"`
	ContactName           string           `json:"contact_name" validate:"required"`
	ContactEmail          string           `json:"contact_email" validate:"required,email"`
	ContactPhone          *string          `json:"contact_phone,omitempty"`
	ContactDesignation    *string          `json:"contact_designation,omitempty"`
}

// UpdateProfileInput carries partial profile corrections. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	CompanyName           *string          `json:"company_name,omitempty"`
	BusinessType          *string          `json:"business_type,omitempty"`
	TaxID                 *string          `json:"tax_id,omitempty"`
	YearsInBusiness       *int             `json:"years_in_business,omitempty"`
	EmployeeCount         *int             `json:"employee_count,omitempty"`
	ExpectedMonthlyVolume *decimal.Decimal `json:"expected_monthly_volume,omitempty"`
	BusinessAddress       *string          `json:"business_address,omitempty"`
	Website               *string          `json:"website,omitempty"`
	ContactName           *string          `json:"contact_name,omitempty"`
	ContactEmail          *string          `json:"contact_email,omitempty"`
	ContactPhone          *string          `json:"contact_phone,omitempty"`
	ContactDesignation    *string          `json:"contact_designation,omitempty"`
}

// DecisionInput accompanies an approval decision.
type DecisionInput struct {
	Comments *string `json:"comments,omitempty"`
}

// RejectInput accompanies a rejection decision.
type RejectInput struct {
	Reason   string  `json:"reason" validate:"required"`
	Comments *string `json:"comments,omitempty"`
}

// HoldInput accompanies a hold request.
type HoldInput struct {
	Reason string `json:"reason" validate:"required"`
}

// SendBackInput carries the feedback a reviewer sends with an information request.
type SendBackInput struct {
	Message string `json:"message" validate:"required"`
}

// ListParams filters the partner directory or an approval queue.
type ListParams struct {
	Statuses []enums.PartnerStatus
	Limit    int
	Cursor   string
}

// ListItem is the directory projection of a partner.
type ListItem struct {
	ID                 uuid.UUID           `json:"id"`
	CompanyName        string              `json:"company_name"`
	BusinessType       string              `json:"business_type"`
	ContactName        string              `json:"contact_name"`
	ContactEmail       string              `json:"contact_email"`
	Status             enums.PartnerStatus `json:"status"`
	Tier               *enums.PartnerTier  `json:"tier,omitempty"`
	OnboardingProgress int                 `json:"onboarding_progress"`
	SubmittedAt        *time.Time          `json:"submitted_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// ListResult pairs a page of partners with the cursor for the next page.
type ListResult struct {
	Items  []ListItem `json:"items"`
	Cursor string     `json:"cursor,omitempty"`
}

// Detail is the full partner view including its approval history.
type Detail struct {
	Partner *models.Partner              `json:"partner"`
	Steps   []models.PartnerApprovalStep `json:"approval_steps"`
}

// profileUpdates converts a partial input into a sparse column map.
func profileUpdates(input UpdateProfileInput) map[string]any {
	updates := map[string]any{}
	setTrimmed := func(column string, value *string) {
		if value != nil {
			updates[column] = strings.TrimSpace(*value)
		}
	}
	setTrimmed("company_name", input.CompanyName)
	setTrimmed("business_type", input.BusinessType)
	setTrimmed("tax_id", input.TaxID)
	setTrimmed("business_address", input.BusinessAddress)
	setTrimmed("website", input.Website)
	setTrimmed("contact_name", input.ContactName)
	setTrimmed("contact_email", input.ContactEmail)
	setTrimmed("contact_phone", input.ContactPhone)
	setTrimmed("contact_designation", input.ContactDesignation)
	if input.YearsInBusiness != nil {
		updates["years_in_business"] = *input.YearsInBusiness
	}
	if input.EmployeeCount != nil {
		updates["employee_count"] = *input.EmployeeCount
	}
	if input.ExpectedMonthlyVolume != nil {
		updates["expected_monthly_volume"] = *input.ExpectedMonthlyVolume
	}
	return updates
}

func toListItem(row models.Partner) ListItem {
	return ListItem{
		ID:                 row.ID,
		CompanyName:        row.CompanyName,
		BusinessType:       row.BusinessType,
		ContactName:        row.ContactName,
		ContactEmail:       row.ContactEmail,
		Status:             row.Status,
		Tier:               row.Tier,
		OnboardingProgress: row.OnboardingProgress,
		SubmittedAt:        row.SubmittedAt,
		CreatedAt:          row.CreatedAt,
	}
}
