package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "rentwear-backend/internal/api/http"
	"rentwear-backend/internal/catalog"
	"rentwear-backend/internal/config"
	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/email"
	"rentwear-backend/internal/events"
	"rentwear-backend/internal/jobs"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/repository/memory"
	"rentwear-backend/internal/repository/postgres"
	"rentwear-backend/internal/scheduler"
	"rentwear-backend/internal/security"
	"rentwear-backend/internal/service"
	"rentwear-backend/internal/storage"
)

const eventBuffer = 256

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	noScheduler := flag.Bool("no-scheduler", false, "Do not run scheduled jobs in this process")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentwear Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "store", cfg.Store.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repositories
	store, db, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store", "error", err)
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if db != nil {
		defer db.Close()
	}

	// Initialize Event Bus and Emitter
	bus := events.NewBus(logger.Get(), eventBuffer)
	defer bus.Close()

	emitter := service.NewEmitter(nil)
	noteSvc := service.NewNotificationService(store.Notifications, nil)
	emitter.Register("notifications", service.NewNotificationFanout(noteSvc, cfg.Email.AdminUserID))
	emitter.Register("bus", bus)

	// Initialize Email
	var sender email.Sender = email.LogSender{}
	if cfg.Email.SendGridAPIKey != "" {
		logger.Info("Using SendGrid email sender", "from", cfg.Email.FromEmail)
		sender = email.NewSendGridSender(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	}
	escalations := email.NewEscalationMailer(sender, cfg.Email.AdminEmail)
	if err := bus.Subscribe(ctx, domain.EventDisputeStatusChanged, "escalation-mailer", escalations.HandleDisputeStatusChanged); err != nil {
		log.Fatalf("Failed to subscribe escalation mailer: %v", err)
	}

	// Initialize Catalog client
	var catalogClient service.Catalog
	if cfg.Catalog.BaseURL != "" {
		logger.Info("Resolving product names from catalog", "base_url", cfg.Catalog.BaseURL)
		catalogClient = catalog.NewClient(cfg.Catalog.BaseURL, cfg.CatalogTimeout())
	}

	// Initialize Storage
	logger.Info("Using local image storage", "upload_dir", cfg.Storage.UploadDir)
	images, err := storage.NewLocalStore(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize image storage", "error", err)
		log.Fatalf("Failed to initialize image storage: %v", err)
	}

	// Initialize Services
	sanitizationSvc := service.NewSanitizationService(store.Sanitizations, store.Orders, images, emitter, nil)
	orderSvc := service.NewOrderService(store.Orders, sanitizationSvc, catalogClient, emitter, nil)
	trialSvc := service.NewTrialService(store.Trials, catalogClient, emitter, nil, cfg.TrialSlot())
	disputeSvc := service.NewDisputeService(store.Disputes, store.Orders, emitter, nil)
	financeSvc, err := service.NewFinanceService(store.Orders, store.Payouts, emitter, nil, service.FinanceRates{
		AdminCommissionPct: cfg.Finance.AdminCommissionPct,
		CenterSharePct:     cfg.Finance.CenterSharePct,
		GSTPct:             cfg.Finance.GSTPct,
	})
	if err != nil {
		log.Fatalf("Invalid finance configuration: %v", err)
	}
	emitter.Register("payouts", service.PayoutRecorder(financeSvc))

	// Initialize Scheduler
	var cronScheduler *scheduler.Scheduler
	if !*noScheduler {
		cronScheduler, err = scheduler.NewScheduler(jobs.NewJobRunner(store, emitter, cfg))
		if err != nil {
			log.Fatalf("Failed to initialize scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	// Set up HTTP server
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.AccessTokenTTL())
	handler := httpapi.NewHandler(httpapi.Services{
		Orders:        orderSvc,
		Trials:        trialSvc,
		Sanitization:  sanitizationSvc,
		Disputes:      disputeSvc,
		Notifications: noteSvc,
		Finance:       financeSvc,
	}, cfg.Storage.MaxFileSize)

	srv := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: httpapi.NewRouter(handler, tokenManager),
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down...")
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

// openStore returns the configured repositories. db is nil for the memory
// store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, *sql.DB, error) {
	if cfg.Store.Type == "postgres" {
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return repository.Store{}, nil, err
		}
		return postgres.NewStore(db, cfg.TrialSlot()).Repositories(), db, nil
	}

	if cfg.Store.Seed {
		logger.Info("Using seeded in-memory store")
		return memory.NewSeeded().Store(), nil, nil
	}
	logger.Info("Using empty in-memory store")
	return memory.New().Store(), nil, nil
}
