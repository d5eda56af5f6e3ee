package controllers

import (
	"net/http"

	"github.com/channelworks/partnerhub-backend/api/responses"
	"github.com/channelworks/partnerhub-backend/api/validators"
	"github.com/channelworks/partnerhub-backend/internal/documents"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

// DocumentsUploadURL issues a presigned PUT grant for one document blob.
func DocumentsUploadURL(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body documents.UploadURLInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticket, err := svc.CreateUploadURL(r.Context(), actor, partnerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

// DocumentsConfirm registers an uploaded blob as a partner document.
func DocumentsConfirm(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body documents.ConfirmUploadInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.ConfirmUpload(r.Context(), actor, partnerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, doc)
	}
}

// DocumentsList returns the partner's documents with short-lived read URLs.
func DocumentsList(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
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

		docs, err := svc.ListDocuments(r.Context(), actor, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, docs)
	}
}

// DocumentsVerify marks one document as reviewed and accepted.
func DocumentsVerify(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		documentID, err := pathUUID(r, "documentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.VerifyDocument(r.Context(), actor, documentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// DocumentsDelete removes an unverified document and its blob.
func DocumentsDelete(svc documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		documentID, err := pathUUID(r, "documentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteDocument(r.Context(), actor, documentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
