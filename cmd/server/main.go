package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/learning-service/internal/auth"
	"github.com/SAP-F-2025/learning-service/internal/cache"
	"github.com/SAP-F-2025/learning-service/internal/config"
	"github.com/SAP-F-2025/learning-service/internal/handlers"
	"github.com/SAP-F-2025/learning-service/internal/media"
	"github.com/SAP-F-2025/learning-service/internal/payment"
	"github.com/SAP-F-2025/learning-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/learning-service/internal/services"
	"github.com/SAP-F-2025/learning-service/internal/utils"
	"github.com/SAP-F-2025/learning-service/internal/validator"
	"github.com/SAP-F-2025/learning-service/pkg"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := utils.NewLogger(cfg.IsProduction())
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.MigrateDatabase(db); err != nil {
		return err
	}

	// Redis; the catalog works uncached when it is unreachable
	var catalogCache cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		log.Warn("Redis unavailable, catalog cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		catalogCache = cache.NewRedisCache(redisClient, log)
	}

	mediaStore, err := media.NewGCSStore(ctx, media.GCSConfig{
		Bucket:      cfg.Media.Bucket,
		CDNDomain:   cfg.Media.CDNDomain,
		Credentials: cfg.Media.Credentials,
	}, log)
	if err != nil {
		return err
	}
	defer mediaStore.Close()

	var gateway payment.Gateway
	if cfg.Payment.Mode == config.PaymentModeGateway {
		stripeGateway, err := payment.NewStripeGateway(payment.StripeConfig{
			SecretKey:     cfg.Payment.StripeSecretKey,
			WebhookSecret: cfg.Payment.StripeWebhookSecret,
		}, log)
		if err != nil {
			return err
		}
		gateway = stripeGateway
	} else {
		log.Warn("Direct payment mode enabled, purchases complete without a gateway")
	}

	publisher, err := cfg.Events.CreateEventPublisher(log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      postgres.NewRepository(db),
		Media:     mediaStore,
		Gateway:   gateway,
		Cache:     catalogCache,
		Publisher: publisher,
		Tokens:    tokens,
		Validator: validator.New(),
		Logger:    log,
		Purchase: services.PurchaseSettings{
			Mode:        cfg.Payment.Mode,
			Currency:    cfg.Payment.Currency,
			FrontendURL: cfg.FrontendURL,
		},
		CatalogCacheTTL: cfg.CatalogCacheTTL,
	})

	reconcilerDone := make(chan struct{})
	go func() {
		defer close(reconcilerDone)
		serviceManager.Reconciler().Run(ctx, cfg.ReconcileInterval)
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handlers.NewHandlerManager(serviceManager, tokens, handlers.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Cookie: handlers.SessionCookie{
			Secure: cfg.CookieSecure,
			TTL:    cfg.SessionTTL,
		},
	}, utils.NewSlogLogger(log)).SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", "addr", srv.Addr, "payment_mode", cfg.Payment.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			stop()
			<-reconcilerDone
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-reconcilerDone
	return nil
}
