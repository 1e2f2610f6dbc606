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

	"peakform/coaching-app/internal/api"
	"peakform/coaching-app/internal/config"
	"peakform/coaching-app/internal/genai"
	"peakform/coaching-app/internal/mfa"
	"peakform/coaching-app/internal/notify"
	"peakform/coaching-app/internal/payment"
	"peakform/coaching-app/internal/platform/logger"
	mongorepo "peakform/coaching-app/internal/repository/mongo"
	"peakform/coaching-app/internal/scheduler"
	"peakform/coaching-app/internal/service"
	"peakform/coaching-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("FATAL: Could not initialize logger: %v", err)
	}
	defer appLog.Sync()
	appLog.Info("starting coaching server", "address", cfg.Server.Address)

	// --- Database Connection ---
	dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
	if err != nil {
		appLog.Fatal("could not connect to MongoDB", "error", err)
	}
	defer func() {
		appLog.Info("disconnecting MongoDB")
		if err := mongorepo.DisconnectDB(dbClient); err != nil {
			appLog.Error("failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	appLog.Info("database connection established", "db", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongorepo.EnsureRequestIndexes(ctx, appDB.Collection("custom_requests"))
		mongorepo.EnsureAssetIndexes(ctx, appDB.Collection("assets"))
		mongorepo.EnsureTemplateIndexes(ctx, appDB.Collection("workout_templates"), appDB.Collection("meal_templates"))
		mongorepo.EnsureDisciplineIndexes(ctx, appDB.Collection("disciplines"))
		appLog.Info("index creation process completed")
	}()

	// --- Redis: notification queue + MFA challenge store ---
	queue, redisClient, err := notify.NewRedisQueue(cfg.Redis, appLog)
	if err != nil {
		appLog.Fatal("could not connect to Redis", "error", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			appLog.Error("failed to close Redis client", "error", err)
		}
	}()
	mfaStore := mfa.NewRedisStore(redisClient)
	mfaManager := mfa.NewManager(mfaStore, cfg.MFA.ChallengeTTL, cfg.MFA.DeviceTrust)

	// --- File Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, appLog)
	if err != nil {
		appLog.Fatal("failed to initialize S3 storage", "error", err)
	}

	// --- Outbound collaborators ---
	sender := notify.NewResendSender(cfg.Notifier, appLog)
	gateway := payment.NewSandboxGateway()
	if cfg.Payment.Mode != "sandbox" {
		appLog.Warn("unknown payment mode, falling back to sandbox", "mode", cfg.Payment.Mode)
	}
	generator := genai.NewHTTPGenerator(cfg.GenAI, appLog)

	// --- Initialize Repositories ---
	userRepo := mongorepo.NewMongoUserRepository(appDB)
	requestRepo := mongorepo.NewMongoRequestRepository(appDB)
	assetRepo := mongorepo.NewMongoAssetRepository(appDB)
	templateRepo := mongorepo.NewMongoTemplateRepository(appDB)
	disciplineRepo := mongorepo.NewMongoDisciplineRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, mfaManager, sender, appLog, cfg.JWT.Secret, cfg.JWT.Expiration)
	requestService := service.NewRequestService(requestRepo, userRepo, disciplineRepo, gateway, queue, appLog)
	builderService := service.NewBuilderService(requestRepo, templateRepo, userRepo, queue, sender, appLog)
	assetService := service.NewAssetService(assetRepo, fileStorage, generator, appLog)
	disciplineService := service.NewDisciplineService(disciplineRepo, appLog)

	// --- Stall reminders ---
	reminder := scheduler.NewReminder(requestRepo, queue, appLog, cfg.Scheduler.StallAfter)
	if cfg.Scheduler.Enabled {
		if err := reminder.Start(cfg.Scheduler.CronSpec); err != nil {
			appLog.Fatal("failed to start reminder scheduler", "error", err)
		}
		defer reminder.Stop()
	}

	// --- Initialize Gin Engine ---
	if cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, requestService, builderService, assetService, disciplineService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		appLog.Info("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("ListenAndServe error", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		appLog.Fatal("server forced to shutdown", "error", err)
	}

	appLog.Info("server exiting")
}
