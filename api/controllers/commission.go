package controllers

import (
	"net/http"

	"github.com/channelworks/partnerhub-backend/api/responses"
	"github.com/channelworks/partnerhub-backend/api/validators"
	"github.com/channelworks/partnerhub-backend/internal/commission"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

type assignTierRequest struct {
	Tier string `json:"tier" validate:"required"`
}

// PartnersAssignTier sets or corrects a partner's commercial tier.
func PartnersAssignTier(svc commission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partnerID, err := pathUUID(r, "partnerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body assignTierRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tier, err := enums.ParsePartnerTier(body.Tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier"))
			return
		}

		partner, err := svc.AssignTier(r.Context(), actor, partnerID, tier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, partner)
	}
}

// PartnersAssignCommissions replaces a partner's product commission set.
func PartnersAssignCommissions(svc commission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partnerID, err := pathUUID(r, "partnerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body commission.AssignProductsInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := svc.AssignProducts(r.Context(), actor, partnerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, partner)
	}
}

// PartnersListCommissions returns the partner's current commission assignments.
func PartnersListCommissions(svc commission.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		partnerID, err := pathUUID(r, "partnerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListAssignments(r.Context(), actor, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
