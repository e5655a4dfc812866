package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/fitness-content/internal/api"
	"alcyxob/fitness-content/internal/config"
	"alcyxob/fitness-content/internal/drafts"
	"alcyxob/fitness-content/internal/logger"
	"alcyxob/fitness-content/internal/normalize"
	"alcyxob/fitness-content/internal/repository/mongo"
	"alcyxob/fitness-content/internal/service"
	"alcyxob/fitness-content/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Fitness Content API
// @version 1.0
// @description Admin API for the exercise catalog: execution methods, production workflow, content matrix and task lists.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic("could not initialize logger: " + err.Error())
	}
	defer log.Sync()
	log.Info("Starting Fitness Content Server...", "address", cfg.Server.Address, "logMode", cfg.Log.Mode)

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatal("Could not connect to MongoDB", "error", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Error("Failed to disconnect MongoDB", "error", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established", "database", cfg.Database.Name)

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB, log)
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3, log)
	if err != nil {
		log.Fatal("Failed to initialize S3 storage", "error", err)
	}

	// --- Draft cache (optional) ---
	var draftCache *drafts.Cache
	if cfg.Redis.Addr != "" {
		store, err := drafts.NewRedisStore(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", "error", err)
		}
		draftCache = drafts.NewCache(store, cfg.Redis.DraftTTL, cfg.Redis.Debounce, log)
		log.Info("Draft cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.DraftTTL)
	} else {
		log.Warn("redis.addr not set, draft endpoints disabled")
	}

	// --- Initialize Repositories ---
	normalizer := normalize.New(log)
	editorRepo := mongo.NewMongoEditorRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB, normalizer)

	// --- Initialize Services ---
	authService := service.NewAuthService(editorRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	exerciseService := service.NewExerciseService(exerciseRepo, normalizer, fileStorage, log)
	contentService := service.NewContentService(exerciseService, cfg.Analysis.Concurrency)

	// --- Initialize Gin Engine ---
	if cfg.Log.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	api.SetupRoutes(router, api.Dependencies{
		JWTSecret:       cfg.JWT.Secret,
		AllowOrigins:    cfg.CORS.AllowOrigins,
		Log:             log,
		AuthService:     authService,
		ExerciseService: exerciseService,
		ContentService:  contentService,
		Drafts:          draftCache,
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", "error", err)
		}
	}()
	log.Info("Server started", "address", cfg.Server.Address)

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	if draftCache != nil {
		if err := draftCache.Flush(ctxShutdown); err != nil {
			log.Error("Failed to flush drafts", "error", err)
		}
	}

	log.Info("Server exiting.")
}
