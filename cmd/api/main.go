package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixline/homemart/internal/chat"
	"github.com/fixline/homemart/internal/http/handlers"
	hmw "github.com/fixline/homemart/internal/http/middleware"
	"github.com/fixline/homemart/internal/notify"
	"github.com/fixline/homemart/internal/platform/ai"
	"github.com/fixline/homemart/internal/platform/cache"
	"github.com/fixline/homemart/internal/platform/mailer"
	"github.com/fixline/homemart/internal/platform/payments"
	"github.com/fixline/homemart/internal/repo/postgres"
	"github.com/fixline/homemart/internal/service"
	"github.com/fixline/homemart/pkg/config"
	"github.com/fixline/homemart/pkg/database"
	"github.com/fixline/homemart/pkg/events"
	"github.com/fixline/homemart/pkg/logger"
	mw "github.com/fixline/homemart/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Redis is optional: without it OTP resend cooldowns and checkout
	// idempotency replay degrade gracefully.
	var store cache.Store
	if redisStore, err := cache.NewRedisStore(cfg.Redis.URL); err != nil {
		logger.Warn("Redis unavailable, cooldowns and idempotency disabled", "error", err)
	} else {
		store = redisStore
	}

	emailSvc := buildMailer(cfg)

	// Repositories
	usersRepo := postgres.NewUsersRepo(pool)
	otpRepo := postgres.NewOTPRepo(pool)
	refreshRepo := postgres.NewRefreshRepo(pool)
	catalogRepo := postgres.NewCatalogRepo(pool)
	cartRepo := postgres.NewCartRepo(pool)
	requestRepo := postgres.NewRequestRepo(pool)
	partnerRepo := postgres.NewPartnerRepo(pool)
	ordersRepo := postgres.NewOrdersRepo(pool)
	notificationsRepo := postgres.NewNotificationsRepo(pool)
	chatRepo := postgres.NewChatRepo(pool)

	// Services
	estimateSvc := service.NewEstimateService(ai.NewClient(cfg.AI), cfg)
	svc := &service.Facade{
		Auth:          service.NewAuthService(usersRepo, otpRepo, refreshRepo, emailSvc, store, cfg),
		Estimate:      estimateSvc,
		Catalog:       service.NewCatalogService(catalogRepo),
		Cart:          service.NewCartService(cartRepo, catalogRepo),
		Requests:      service.NewRequestService(requestRepo, usersRepo, estimateSvc, eventBus),
		Partners:      service.NewPartnerService(partnerRepo, usersRepo, eventBus),
		Payments: service.NewPaymentService(ordersRepo, cartRepo, catalogRepo, usersRepo,
			payments.NewStripeIntents(cfg.Stripe.SecretKey), eventBus, cfg.Stripe.Currency),
		Notifications: service.NewNotificationService(notificationsRepo),
		Stats:         service.NewStatsService(usersRepo, catalogRepo, requestRepo, ordersRepo),
	}

	// Notification worker shares the process with the API.
	worker := notify.NewWorker(eventBus, notificationsRepo, emailSvc)
	if err := worker.Start(ctx); err != nil {
		logger.Error("Failed to start notification worker", "error", err)
		os.Exit(1)
	}

	hub := chat.NewHub(chatRepo, requestRepo)

	gate := hmw.NewGate(cfg.Auth.JWTSecret, hmw.RouteTable())
	protect := gate.Protect

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AppURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authLimiter := hmw.NewRateLimiter(pool, hmw.RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
		KeyFunc:  hmw.ClientIPKeyFunc,
	})
	r.With(authLimiter.Middleware()).Mount("/api/authorize", handlers.NewAuthHandler(svc.Auth, cfg.Auth.CookieSecure).Routes())

	idempotent := func(next http.Handler) http.Handler { return next }
	if store != nil {
		idempotent = hmw.Idempotency(store)
	}

	handlers.NewAIHandler(svc.Estimate).Mount(r, protect)
	handlers.NewCatalogHandler(svc.Catalog).Mount(r, protect)
	handlers.NewCartHandler(svc.Cart).Mount(r, protect)
	handlers.NewRequestHandler(svc.Requests).Mount(r, protect)
	handlers.NewPartnerHandler(svc.Partners).Mount(r, protect)
	handlers.NewPaymentHandler(svc.Payments, cfg.Stripe.WebhookSecret).Mount(r, protect, idempotent)
	handlers.NewNotificationHandler(svc.Notifications).Mount(r, protect)
	handlers.NewStatsHandler(svc.Stats).Mount(r, protect)
	handlers.NewChatHandler(hub).Mount(r, protect)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		logger.Info("Using dev mailer, emails go to logs")
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailer(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass, cfg.Email.SMTPUseTLS)
	}
}
