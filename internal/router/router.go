package router

import (
	"log"
	"log/slog"

	"github.com/anonto42/reelnote/backend/internal/handlers"
	"github.com/anonto42/reelnote/backend/internal/middleware"
	"github.com/anonto42/reelnote/backend/internal/models"
	"github.com/anonto42/reelnote/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Deps are the collaborators the routes are built from
type Deps struct {
	Users         repositories.UserRepository
	Blocks        repositories.BlockRepository
	Notifications repositories.NotificationRepository
	Videos        repositories.VideoRepository
	Feedbacks     repositories.FeedbackRepository

	Pipeline   handlers.EventPipeline
	Reconciler handlers.UserReconciler
	Badges     handlers.BadgeCounter

	TokenVerifier middleware.TokenVerifier
	JWTSecret     string
	// WatchChangeStreams means the watcher feeds the pipeline, so the
	// creation webhooks are not served.
	WatchChangeStreams bool
	PageSize      int
	Logger        *slog.Logger
}

// Migrate creates or updates the PostgreSQL tables
func Migrate(pgdb *gorm.DB) error {
	if err := pgdb.AutoMigrate(
		&models.User{},
		&models.BlockEdge{},
		&models.Notification{},
		&models.RecipientNotification{},
	); err != nil {
		return err
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")
	return nil
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Internal routes for trigger webhooks (service JWT) ---
	internal := e.Group("/internal")
	internal.Use(middleware.JWTAuthMiddleware(d.JWTSecret))
	triggerHandler := handlers.NewTriggerHandler(d.Feedbacks, d.Pipeline, d.Reconciler, d.Logger)
	triggerHandler.RegisterReconcileRoutes(internal)
	if d.WatchChangeStreams {
		log.Println("Change streams enabled, trigger webhooks not registered.")
	} else {
		triggerHandler.RegisterTriggerRoutes(internal)
		log.Println("Trigger routes configured.")
	}

	// --- Protected routes (require Firebase ID token) ---
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(d.TokenVerifier))
	log.Println("Firebase authentication middleware applied to /api/v1 group.")

	userHandler := handlers.NewUserHandler(d.Users)
	userHandler.RegisterProfileRoutes(api)
	log.Println("User profile routes configured.")

	blockHandler := handlers.NewBlockHandler(d.Blocks)
	blockHandler.RegisterBlockRoutes(api)
	log.Println("Block routes configured.")

	videoHandler := handlers.NewVideoHandler(d.Videos)
	videoHandler.RegisterVideoRoutes(api)
	log.Println("Video routes configured.")

	notificationHandler := handlers.NewNotificationHandler(d.Notifications, d.Badges, d.PageSize)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}
