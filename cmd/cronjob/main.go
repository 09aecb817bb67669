package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"rentwear-backend/internal/config"
	"rentwear-backend/internal/jobs"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/repository/memory"
	"rentwear-backend/internal/repository/postgres"
	"rentwear-backend/internal/scheduler"
	"rentwear-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	job := flag.String("job", "", "Run a specific job once and exit (trial-reminders, overdue-returns, all)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Rentwear Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Repositories
	var store repository.Store
	if cfg.Store.Type == "postgres" {
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
		db, err := postgres.Open(context.Background(), cfg.GetDatabaseConnectionString())
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		store = postgres.NewStore(db, cfg.TrialSlot()).Repositories()
	} else {
		logger.Warn("Running jobs against an in-memory store; notifications are lost on exit")
		store = memory.NewSeeded().Store()
	}

	// Jobs only write notifications, so no bus is attached here
	emitter := service.NewEmitter(nil)
	noteSvc := service.NewNotificationService(store.Notifications, nil)
	emitter.Register("notifications", service.NewNotificationFanout(noteSvc, cfg.Email.AdminUserID))

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, emitter, cfg)

	// Check if running a single job
	if *job != "" {
		logger.Info("Running job once", "job", *job)
		runJobOnce(jobRunner, *job)
		logger.Info("Job execution completed", "job", *job)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "trial-reminders":
		jobRunner.SendTrialReminders()
	case "overdue-returns":
		jobRunner.FlagOverdueReturns()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - trial-reminders\n")
		fmt.Printf("  - overdue-returns\n")
		fmt.Printf("  - all\n")
		os.Exit(1)
	}
}
