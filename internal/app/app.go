package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"emploi_backend/internal/config"
	"emploi_backend/internal/database"
	"emploi_backend/internal/email"
	"emploi_backend/internal/handlers"
	"emploi_backend/internal/logger"
	"emploi_backend/internal/matching"
	"emploi_backend/internal/middleware"
	"emploi_backend/internal/repositories"
	"emploi_backend/internal/routes"
	"emploi_backend/internal/services"
	"emploi_backend/internal/storage"
	"emploi_backend/internal/validator"
)

// Run boots the whole application: config, logger, database, migrations and
// the HTTP server.
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
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
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	router := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter wires repositories, services and handlers onto a gin engine.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	store, err := storage.NewStorage(storage.Config{
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	scorer := matching.NewClient(matching.Config{
		Endpoint:       cfg.Matching.Endpoint,
		ConnectTimeout: time.Duration(cfg.Matching.ConnectTimeout) * time.Second,
		ReadTimeout:    time.Duration(cfg.Matching.ReadTimeout) * time.Second,
	})

	emailProvider := email.NewSMTPProvider(cfg)

	userRepo := repositories.NewUserRepository(gormDB)
	offerRepo := repositories.NewOfferRepository(gormDB)
	applicationRepo := repositories.NewApplicationRepository(gormDB)

	policy := services.NewAccessPolicy(userRepo)
	authService := services.NewAuthService(userRepo, emailProvider)
	profileService := services.NewProfileService(userRepo, policy, store, cfg)
	offerService := services.NewOfferService(offerRepo, policy)
	applicationService := services.NewApplicationService(applicationRepo, offerRepo, userRepo, policy, scorer, store)
	recommendationService := services.NewRecommendationService(userRepo, offerRepo, scorer, store)

	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	appHandlers := &routes.AppHandlers{
		AuthHandler:           handlers.NewAuthHandler(baseHandler, authService),
		ProfileHandler:        handlers.NewProfileHandler(baseHandler, profileService, cfg.Upload.MaxSize),
		OfferHandler:          handlers.NewOfferHandler(baseHandler, offerService),
		ApplicationHandler:    handlers.NewApplicationHandler(baseHandler, applicationService),
		RecommendationHandler: handlers.NewRecommendationHandler(baseHandler, recommendationService),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS())

	routes.RegisterRoutes(router, appHandlers)
	return router
}
