package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"social-campaign-platform/internal/ai"
	"social-campaign-platform/internal/config"
	"social-campaign-platform/internal/enhance"
	"social-campaign-platform/internal/ideas"
	"social-campaign-platform/internal/logger"
	"social-campaign-platform/internal/telemetry"
	"social-campaign-platform/middleware"
	"social-campaign-platform/models"
	"social-campaign-platform/routes"
	"social-campaign-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Telemetry
	var metrics *telemetry.Metrics
	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.InitTracer("social-campaign-platform", cfg.OTLPEndpoint)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
		metrics, err = telemetry.InitMetrics()
		if err != nil {
			logger.Warn("Metrics disabled", "error", err)
		}
	}

	// Enhancement backend: deterministic rules by default, Gemini opt-in
	var enhancer enhance.Backend
	switch cfg.EnhancementBackend {
	case "gemini":
		gemini, err := ai.NewGeminiBackend(cfg.GeminiAPIKey, cfg.GeminiTier)
		if err != nil {
			log.Fatal("Failed to initialize Gemini backend:", err)
		}
		defer gemini.Close()
		enhancer = gemini
	default:
		enhancer = enhance.NewRuleEngine(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	// Async task client for campaign launch
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	sessionStore := services.NewSessionStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)
	ideaSource := ideas.NewMongoSource(db)
	auditor := models.NewAuditLogger(db)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TelemetryEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
		if metrics != nil {
			router.Use(middleware.MetricsMiddleware(metrics))
		}
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	router.Use(middleware.AuditMiddleware(auditor, metrics))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, mongoClient, rdb)
	routes.SetupPlatformRoutes(router)
	routes.SetupIdeaRoutes(router, cfg, ideaSource, rdb)
	routes.SetupWizardRoutes(router, cfg, routes.WizardDeps{
		Store:       sessionStore,
		Ideas:       ideaSource,
		Enhancer:    enhancer,
		Queue:       asynqClient,
		MongoClient: mongoClient,
		Metrics:     metrics,
	}, rdb)
	routes.SetupCalendarRoutes(router, cfg, mongoClient, rdb)
	routes.SetupCampaignRoutes(router, cfg, mongoClient, rdb)
	routes.SetupMediaRoutes(router, cfg, rdb)
	routes.SetupAuditRoutes(router, cfg, auditor, rdb)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
