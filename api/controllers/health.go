package controllers

import (
	"net/http"

	"github.com/channelworks/partnerhub-backend/api/responses"
	"github.com/channelworks/partnerhub-backend/pkg/config"
	"github.com/channelworks/partnerhub-backend/pkg/db"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PartnerHub-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every registered dependency answers a ping.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers ...db.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-PartnerHub-Env", cfg.App.Env)
		for _, pinger := range pingers {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
