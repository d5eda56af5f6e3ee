package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/channelworks/partnerhub-backend/api"
	"github.com/channelworks/partnerhub-backend/api/routes"
	"github.com/channelworks/partnerhub-backend/internal/auth"
	"github.com/channelworks/partnerhub-backend/internal/commission"
	"github.com/channelworks/partnerhub-backend/internal/documents"
	"github.com/channelworks/partnerhub-backend/internal/notes"
	"github.com/channelworks/partnerhub-backend/internal/notifications"
	"github.com/channelworks/partnerhub-backend/internal/partners"
	"github.com/channelworks/partnerhub-backend/internal/products"
	"github.com/channelworks/partnerhub-backend/internal/users"
	"github.com/channelworks/partnerhub-backend/pkg/auth/session"
	"github.com/channelworks/partnerhub-backend/pkg/config"
	"github.com/channelworks/partnerhub-backend/pkg/db"
	"github.com/channelworks/partnerhub-backend/pkg/logger"
	"github.com/channelworks/partnerhub-backend/pkg/migrate"
	"github.com/channelworks/partnerhub-backend/pkg/pubsub"
	"github.com/channelworks/partnerhub-backend/pkg/redis"
	"github.com/channelworks/partnerhub-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())
	partnerRepo := partners.NewRepository(dbClient.DB())
	productRepo := products.NewRepository(dbClient.DB())
	documentRepo := documents.NewRepository(dbClient.DB())
	commissionRepo := commission.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	noteRepo := notes.NewRepository(dbClient.DB())

	dispatcher, err := notifications.NewDispatcher(notificationRepo, pubsubClient.PartnerEventsPublisher(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create event dispatcher", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		PartnerRepo:    partnerRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	partnerService, err := partners.NewService(partnerRepo, dispatcher)
	if err != nil {
		logg.Error(context.Background(), "failed to create partner service", err)
		os.Exit(1)
	}

	documentService, err := documents.NewService(
		documentRepo,
		partnerRepo,
		gcsClient,
		dispatcher,
		logg,
		cfg.GCS.BucketName,
		cfg.GCS.UploadURLExpiry,
		cfg.GCS.DownloadURLExpiry,
		int64(cfg.Documents.MaxUploadMB)<<20,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create document service", err)
		os.Exit(1)
	}

	commissionService, err := commission.NewService(commissionRepo, partnerRepo, productRepo, dispatcher)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	noteService, err := notes.NewService(noteRepo, partnerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create note service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		gcsClient,
		sessionManager,
		registry,
		routes.Services{
			Auth:          authService,
			Register:      registerService,
			Partners:      partnerService,
			Documents:     documentService,
			Commission:    commissionService,
			Products:      productService,
			Notifications: notificationService,
			Notes:         noteService,
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := api.NewServer(addr, router)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining")
		if err := server.Shutdown(context.Background()); err != nil {
			logg.Error(ctx, "error during shutdown", err)
			os.Exit(1)
		}
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}
}
