package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/api/responses"
	"github.com/channelworks/partnerhub-backend/api/validators"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/pkg/db/models"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

// plainTransition adapts the workflow operations that take no request body.
func plainTransition(
	logg *logger.Logger,
	op func(ctx context.Context, actor partners.Actor, partnerID uuid.UUID) (*models.Partner, error),
) http.HandlerFunc {
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

		partner, err := op(r.Context(), actor, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, partner)
	}
}

// bodyTransition adapts the workflow operations that decode a request body.
func bodyTransition[T any](
	logg *logger.Logger,
	op func(ctx context.Context, actor partners.Actor, partnerID uuid.UUID, input T) (*models.Partner, error),
) http.HandlerFunc {
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

		var body T
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partner, err := op(r.Context(), actor, partnerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, partner)
	}
}

// PartnersSubmit moves a draft application into first-level review.
func PartnersSubmit(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return plainTransition(logg, svc.SendToL1)
}

// PartnersApproveL1 records a first-level approval.
func PartnersApproveL1(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.ApproveL1)
}

// PartnersRejectL1 records a first-level rejection.
func PartnersRejectL1(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.RejectL1)
}

// PartnersApproveL2 records the final approval and activates the partner.
func PartnersApproveL2(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.ApproveL2)
}

// PartnersRejectL2 records a second-level rejection.
func PartnersRejectL2(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.RejectL2)
}

// PartnersHold parks an in-flight application.
func PartnersHold(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.PutOnHold)
}

// PartnersResume returns a held application to its prior status.
func PartnersResume(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return plainTransition(logg, svc.Resume)
}

// PartnersSendBack asks the applicant for more information.
func PartnersSendBack(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.SendBack)
}

// PartnersRejectPermanent closes an application for good.
func PartnersRejectPermanent(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return bodyTransition(logg, svc.RejectPermanently)
}

// PartnersResubmit sends a corrected application back into review.
func PartnersResubmit(svc partners.Service, logg *logger.Logger) http.HandlerFunc {
	return plainTransition(logg, svc.Resubmit)
}
