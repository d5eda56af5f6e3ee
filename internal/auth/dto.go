package auth

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/channelworks/partnerhub-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	PartnerID    *uuid.UUID     `json:"partner_id,omitempty"`
	User         *users.UserDTO `json:"user"`
}

// RefreshRequest carries the expired access token and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse returns the rotated token pair.
type RefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest contains the payload for partner self-registration: the
// credentials plus the minimum company profile for the draft application.
type RegisterRequest struct {
	FullName              string           `json:"full_name" validate:"required"`
	Email                 string           `json:"email" validate:"required,email"`
	Password              string           `json:"password" validate:"required,min=8"`
	Phone                 *string          `json:"phone,omitempty"`
	CompanyName           string           `json:"company_name" validate:"required"`
	BusinessType          string           `json:"business_type" validate:"required"`
	TaxID                 *string          `json:"tax_id,omitempty"`
	YearsInBusiness       *int             `json:"years_in_business,omitempty"`
	EmployeeCount         *int             `json:"employee_count,omitempty"`
	ExpectedMonthlyVolume *decimal.Decimal `json:"expected_monthly_volume,omitempty"`
	BusinessAddress       *string          `json:"business_address,omitempty"`
	Website               *string          `json:"website,omitempty"`
	ContactPhone          *string          `json:"contact_phone,omitempty"`
	ContactDesignation    *string          `json:"contact_designation,omitempty"`
}

// RegisterResponse returns the created identity and draft application IDs.
type RegisterResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	PartnerID uuid.UUID `json:"partner_id"`
}
