package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "librental-backend/internal/api/http"
	"librental-backend/internal/config"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository/postgres"
	"librental-backend/internal/security"
	"librental-backend/internal/service"
	"librental-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Librental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Security
	tokenManager := security.NewTokenManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Minute,
	)

	// Initialize Storage
	coverStorage, err := storage.NewLocalStorage(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize cover storage", "error", err)
		log.Fatalf("Failed to initialize cover storage: %v", err)
	}
	logger.Info("Using local cover storage", "upload_dir", cfg.Storage.UploadDir)

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
	loanQuerySvc := service.NewLoanQueryService(store.LoanRepository)
	clientSvc := service.NewClientService(store.ClientRepository)
	bookSvc := service.NewBookService(store.BookRepository, coverStorage)
	authSvc := service.NewAuthService(store.UserRepository, tokenManager)

	// Initialize HTTP handlers and router
	handlers := &httpapi.Handlers{
		Auth:          httpapi.NewAuthHandler(authSvc),
		Loan:          httpapi.NewLoanHandler(loanSvc, loanQuerySvc),
		Client:        httpapi.NewClientHandler(clientSvc),
		Book:          httpapi.NewBookHandler(bookSvc, coverStorage),
		Configuration: httpapi.NewConfigurationHandler(configurationSvc),
		AuthMW:        httpapi.NewAuthMiddleware(tokenManager),
	}
	router := httpapi.NewRouter(handlers)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server stopped", "error", err)
		log.Fatalf("Server stopped: %v", err)
	}
}
