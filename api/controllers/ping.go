package controllers

import (
	"net/http"

	"github.com/channelworks/partnerhub-backend/api/middleware"
	"github.com/channelworks/partnerhub-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "private", "status": "ok"}
		if partnerID := middleware.PartnerIDFromContext(r.Context()); partnerID != "" {
			payload["partner_id"] = partnerID
		}
		responses.WriteSuccess(w, payload)
	}
}
