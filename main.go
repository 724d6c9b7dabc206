package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vibblo-api/config"
	"vibblo-api/database"
	"vibblo-api/jobs"
	"vibblo-api/middleware"
	"vibblo-api/repositories"
	"vibblo-api/routes"
	"vibblo-api/services"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Seed database with test data (optional - for development)
	if err := database.SeedData(db); err != nil {
		log.WithError(err).Warn("failed to seed database")
	}

	store := repositories.NewGormStore(db)
	emailService := services.NewEmailService(cfg, log)

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.RateLimit(120, 20))
	router.Use(gin.Recovery())

	// Setup routes
	routes.SetupRoutes(router, store, cfg, emailService, log)

	// Background cleanup of old read notifications
	cleanupJob := jobs.NewNotificationCleanupJob(
		store,
		time.Hour,
		time.Duration(cfg.NotificationRetentionDays)*24*time.Hour,
		log,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	log.WithField("port", cfg.Port).Info("starting Vibblo API server")

	if err := router.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
