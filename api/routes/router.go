package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/channelworks/partnerhub-backend/api/controllers"
	"github.com/channelworks/partnerhub-backend/api/middleware"
	"github.com/channelworks/partnerhub-backend/internal/auth"
	"github.com/channelworks/partnerhub-backend/internal/commission"
	"github.com/channelworks/partnerhub-backend/internal/documents"
	"github.com/channelworks/partnerhub-backend/internal/notes"
	"github.com/channelworks/partnerhub-backend/internal/notifications"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/internal/products"
	"github.com/channelworks/partnerhub-backend/pkg/auth/session"
	"github.com/channelworks/partnerhub-backend/pkg/config"
	"github.com/channelworks/partnerhub-backend/pkg/db"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
	"github.com/channelworks/partnerhub-backend/pkg/metrics"
	"github.com/channelworks/partnerhub-backend/pkg/redis"
)

// Services groups the domain services the router exposes.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Partners      partners.Service
	Documents     documents.Service
	Commission    commission.Service
	Products      products.Service
	Notifications notifications.Service
	Notes         notes.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsP db.Pinger,
	sessionChecker session.AccessSessionChecker,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	httpMetrics := metrics.NewHTTPMetrics(registry)
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	// A router without redis (tests) runs with throttling and idempotency off.
	idempotencyMW := passThrough
	loginLimitMW := passThrough
	registerLimitMW := passThrough
	if redisClient != nil {
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		)
		registerPolicy := middleware.NewAuthRateLimitPolicy(
			"register",
			cfg.AuthRateLimit.RegisterWindow,
			cfg.AuthRateLimit.RegisterIPLimit,
			cfg.AuthRateLimit.RegisterEmailLimit,
		)
		idempotencyMW = middleware.Idempotency(redisClient, logg)
		loginLimitMW = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		registerLimitMW = middleware.AuthRateLimit(registerPolicy, redisClient, logg)
	}

	pingers := []db.Pinger{dbP, gcsP}
	if redisClient != nil {
		pingers = append(pingers, redisClient)
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers...))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimitMW).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(registerLimitMW, idempotencyMW).Post("/register", controllers.AuthRegister(svcs.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.PartnerContext(logg))
		r.Use(idempotencyMW)

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/partners", func(r chi.Router) {
			r.With(middleware.RequireCapability(partners.CapabilityManage, logg)).Post("/", controllers.PartnersCreate(svcs.Partners, logg))
			r.Get("/", controllers.PartnersList(svcs.Partners, logg))

			r.Route("/{partnerID}", func(r chi.Router) {
				r.Get("/", controllers.PartnersGet(svcs.Partners, logg))
				r.Patch("/", controllers.PartnersUpdateProfile(svcs.Partners, logg))

				r.Post("/submit", controllers.PartnersSubmit(svcs.Partners, logg))
				r.Post("/resubmit", controllers.PartnersResubmit(svcs.Partners, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(partners.CapabilityApproveL1, logg))
					r.Post("/approve-l1", controllers.PartnersApproveL1(svcs.Partners, logg))
					r.Post("/reject-l1", controllers.PartnersRejectL1(svcs.Partners, logg))
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(partners.CapabilityApproveL2, logg))
					r.Post("/approve-l2", controllers.PartnersApproveL2(svcs.Partners, logg))
					r.Post("/reject-l2", controllers.PartnersRejectL2(svcs.Partners, logg))
				})
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireInternal(logg))
					r.Post("/hold", controllers.PartnersHold(svcs.Partners, logg))
					r.Post("/resume", controllers.PartnersResume(svcs.Partners, logg))
					r.Post("/send-back", controllers.PartnersSendBack(svcs.Partners, logg))
					r.Post("/reject-permanent", controllers.PartnersRejectPermanent(svcs.Partners, logg))
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireCapability(partners.CapabilityManage, logg))
					r.Post("/tier", controllers.PartnersAssignTier(svcs.Commission, logg))
					r.Post("/commissions", controllers.PartnersAssignCommissions(svcs.Commission, logg))
				})
				r.Get("/commissions", controllers.PartnersListCommissions(svcs.Commission, logg))

				r.Route("/documents", func(r chi.Router) {
					r.Post("/upload-url", controllers.DocumentsUploadURL(svcs.Documents, logg))
					r.Post("/", controllers.DocumentsConfirm(svcs.Documents, logg))
					r.Get("/", controllers.DocumentsList(svcs.Documents, logg))
				})

				r.Route("/notes", func(r chi.Router) {
					r.With(middleware.RequireInternal(logg)).Post("/", controllers.NotesAdd(svcs.Notes, logg))
					r.Get("/", controllers.NotesList(svcs.Notes, logg))
				})
			})
		})

		r.Route("/v1/documents/{documentID}", func(r chi.Router) {
			r.With(middleware.RequireInternal(logg)).Post("/verify", controllers.DocumentsVerify(svcs.Documents, logg))
			r.Delete("/", controllers.DocumentsDelete(svcs.Documents, logg))
		})

		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(svcs.Products, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireInternal(logg))
				r.Post("/", controllers.ProductsCreate(svcs.Products, logg))
				r.Post("/{productID}/eligible", controllers.ProductsSetEligible(svcs.Products, logg))
			})
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.NotificationsMarkRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(svcs.Notifications, logg))
		})
	})

	return r
}

func passThrough(next http.Handler) http.Handler {
	return next
}
