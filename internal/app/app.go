package app

import (
	"context"
	"fmt"
	"time"

	"membership_backend/internal/config"
	"membership_backend/internal/email"
	"membership_backend/internal/handlers"
	"membership_backend/internal/logger"
	"membership_backend/internal/middleware"
	"membership_backend/internal/models"
	"membership_backend/internal/provider"
	"membership_backend/internal/repositories"
	"membership_backend/internal/routes"
	"membership_backend/internal/services"
	"membership_backend/internal/store"
	"membership_backend/internal/validator"
	"membership_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const sweepInterval = 5 * time.Minute

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	credentialRepo := buildCredentialRepository(cfg)

	transactions, err := store.NewTransactionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize transaction store", "error", err)
	}
	sessions, err := store.NewSessionStore(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize session store", "error", err)
	}
	logger.Info("Stores initialized", "type", cfg.Store.Type)

	ginRouter := SetupRouter(cfg, transactions, sessions, credentialRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workers.NewExpiryWorker(transactions, sessions, sweepInterval).Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires services, handlers and middleware into a gin engine.
// Split from Run so tests can build the full router against in-memory
// dependencies.
func SetupRouter(
	cfg *config.Config,
	transactions store.TransactionStore,
	sessions store.SessionStore,
	credentialRepo repositories.CredentialRepository,
) *gin.Engine {
	serviceContainer := initializeServices(cfg, transactions, sessions, credentialRepo)
	appHandlers := initializeHandlers(cfg, serviceContainer, transactions, sessions)
	ginRouter := initializeGinRouter(cfg)
	routes.RegisterRoutes(ginRouter, appHandlers)
	return ginRouter
}

func buildCredentialRepository(cfg *config.Config) repositories.CredentialRepository {
	if cfg.Database.DSN == "" {
		logger.Warn("DATABASE_URL not set, using in-memory credential store")
		return repositories.NewMemoryCredentialRepository()
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	if err := gormDB.AutoMigrate(&models.PendingCredential{}, &models.ApprovedUser{}); err != nil {
		logger.Fatal("Failed to migrate credential tables", "error", err)
	}
	logger.Info("Database connected")
	return repositories.NewGormCredentialRepository(gormDB)
}

func initializeServices(
	cfg *config.Config,
	transactions store.TransactionStore,
	sessions store.SessionStore,
	credentialRepo repositories.CredentialRepository,
) *services.ServiceContainer {
	var mailer email.Provider = email.NoopProvider{}
	if cfg.Email.Enabled {
		mailer = email.NewSMTPProvider(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUsername,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
		logger.Info("SMTP mailer enabled", "host", cfg.Email.SMTPHost)
	}

	paymentProviders := map[string]provider.PaymentProvider{
		"lirapay": provider.NewLiraPayProvider(cfg.LiraPay.APIKey, cfg.LiraPay.BaseURL),
		"syncpay": provider.NewSyncPayProvider(cfg.SyncPay.ClientID, cfg.SyncPay.ClientSecret, cfg.SyncPay.BaseURL),
	}

	return &services.ServiceContainer{
		PaymentService: services.NewPaymentService(cfg, transactions, sessions, credentialRepo, mailer, paymentProviders),
		SessionService: services.NewSessionService(cfg, sessions),
		AuthService:    services.NewAuthService(credentialRepo),
		EmailService:   mailer,
	}
}

func initializeHandlers(
	cfg *config.Config,
	serviceContainer *services.ServiceContainer,
	transactions store.TransactionStore,
	sessions store.SessionStore,
) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		PaymentHandler: handlers.NewPaymentHandler(baseHandler, serviceContainer.PaymentService),
		WebhookHandler: handlers.NewWebhookHandler(baseHandler, cfg, serviceContainer.PaymentService),
		AuthHandler:    handlers.NewAuthHandler(baseHandler, cfg, serviceContainer.AuthService, serviceContainer.SessionService),
		AdminHandler:   handlers.NewAdminHandler(baseHandler, transactions, sessions),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	return router
}
