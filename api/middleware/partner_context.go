package middleware

import (
	"net/http"

	"github.com/channelworks/partnerhub-backend/api/responses"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

// PartnerContext rejects partner-role requests that carry no owned partner,
// e.g. a token minted before the draft application existed. Internal-role
// tokens never carry a partner claim and pass through untouched.
func PartnerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) == string(enums.ActorRolePartner) && PartnerIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "partner context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
