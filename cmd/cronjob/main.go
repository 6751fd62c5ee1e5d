package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"librental-backend/internal/config"
	"librental-backend/internal/jobs"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository/postgres"
	"librental-backend/internal/scheduler"
	"librental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'due-soon-reminders', 'overdue-reminders', 'block-delinquent', 'all-nightly')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Librental Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Services
	configurationSvc := service.NewConfigurationService(store.ConfigurationRepository)
	validationSvc := service.NewLoanValidationService(store.ClientRepository, store.BookRepository)
	pricingSvc := service.NewLoanPricingService()
	loanSvc := service.NewLoanService(
		store,
		store.LoanRepository,
		store.BookRepository,
		store.ClientRepository,
		configurationSvc,
		validationSvc,
		pricingSvc,
	)
	emailSvc := service.NewEmailService(cfg.Email)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(db, store, &jobs.Services{
		Email:         emailSvc,
		Loan:          loanSvc,
		Configuration: configurationSvc,
	}, cfg)

	// Run a single job and exit if requested
	if *runOnce != "" {
		runSingleJob(jobRunner, *runOnce)
		return
	}

	// Start the scheduler
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received shutdown signal", "signal", sig.String())

	sched.Stop()
}

func runSingleJob(jobRunner *jobs.JobRunner, name string) {
	switch name {
	case "due-soon-reminders":
		jobRunner.SendDueSoonReminders()
	case "overdue-reminders":
		jobRunner.SendOverdueReminders()
	case "block-delinquent":
		jobRunner.BlockDelinquentClients()
	case "all-nightly":
		jobRunner.RunAllNightlyJobs()
	default:
		logger.Error("Unknown job name", "job", name)
		os.Exit(1)
	}
}
