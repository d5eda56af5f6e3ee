package controllers

import (
	"net/http"

	"github.com/channelworks/partnerhub-backend/api/responses"
	"github.com/channelworks/partnerhub-backend/api/validators"
	"github.com/channelworks/partnerhub-backend/internal/notes"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

// NotesAdd attaches a reviewer note to a partner record.
func NotesAdd(svc notes.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body notes.AddNoteInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		note, err := svc.AddNote(r.Context(), actor, partnerID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, note)
	}
}

// NotesList returns the notes the actor is allowed to see for a partner.
func NotesList(svc notes.Service, logg *logger.Logger) http.HandlerFunc {
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

		rows, err := svc.ListNotes(r.Context(), actor, partnerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
