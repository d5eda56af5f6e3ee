package auth

import (
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    uuid.UUID
	FullName  string
	Role      enums.ActorRole
	PartnerID *uuid.UUID
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID    uuid.UUID       `json:"user_id"`
	FullName  string          `json:"full_name,omitempty"`
	Role      enums.ActorRole `json:"role"`
	PartnerID *uuid.UUID      `json:"partner_id,omitempty"`
	jwt.RegisteredClaims
}
