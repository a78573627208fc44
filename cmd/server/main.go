package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/reelnote/backend/internal/logger"
	"github.com/anonto42/reelnote/backend/internal/notify"
	"github.com/anonto42/reelnote/backend/internal/repositories"
	"github.com/anonto42/reelnote/backend/internal/router"
	"github.com/anonto42/reelnote/backend/internal/triggers"
	"github.com/anonto42/reelnote/backend/pkg/config"
	"github.com/anonto42/reelnote/backend/pkg/firebase"
	"github.com/anonto42/reelnote/backend/validators"
	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg := config.Load()
	slogger := logger.New(cfg.Env, cfg.LogLevel)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	if err := router.Migrate(db.Postgres); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Firebase
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	defer firebaseApp.Close()

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	blockRepo := repositories.NewPostgresBlockRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	videoRepo := repositories.NewMongoVideoRepository(db.MongoDB)
	feedbackRepo := repositories.NewMongoFeedbackRepository(db.MongoDB)
	tokenRepo := repositories.NewFirestoreTokenRepository(firebaseApp.Firestore)

	// --- Notification engine ---
	badges := notify.NewBadgeAggregator(notificationRepo, cfg.BadgeWindow())
	pipeline := notify.NewPipeline(notify.PipelineDeps{
		Resolver: notify.NewResolver(blockRepo, slogger),
		Writer:   notify.NewWriter(notificationRepo, slogger),
		Dispatcher: notify.NewDispatcher(firebaseApp.MessagingClient, tokenRepo, badges, notify.DispatcherConfig{
			DeepLinkScheme: cfg.DeepLinkScheme,
			Locale:         cfg.PushLocale,
		}, slogger),
		Feedbacks: feedbackRepo,
		Users:     userRepo,
		Videos:    videoRepo,
		Logger:    slogger,
	})
	reconciler := notify.NewReconciler(notificationRepo, slogger)

	if cfg.WatchChangeStreams {
		watcher := triggers.NewWatcher(db.MongoDB, pipeline, slogger)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slogger.Error("change stream watcher stopped", "error", err)
			}
		}()
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	// Setup global middleware
	config.SetupMiddleware(e, slogger)

	// Setup routes and dependencies
	router.SetupRoutes(e, router.Deps{
		Users:              userRepo,
		Blocks:             blockRepo,
		Notifications:      notificationRepo,
		Videos:             videoRepo,
		Feedbacks:          feedbackRepo,
		Pipeline:           pipeline,
		Reconciler:         reconciler,
		Badges:             badges,
		TokenVerifier:      firebaseApp.AuthClient,
		JWTSecret:          cfg.JWTSecret,
		WatchChangeStreams: cfg.WatchChangeStreams,
		PageSize:           cfg.InboxPageSize,
		Logger:             slogger,
	})

	// Start server
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v\n", err)
	}
}
