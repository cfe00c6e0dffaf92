package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"social-campaign-platform/internal/ai"
	"social-campaign-platform/internal/config"
	"social-campaign-platform/internal/enhance"
	"social-campaign-platform/internal/logger"
	"social-campaign-platform/internal/queue"
	"social-campaign-platform/internal/telemetry"
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

	// Redis for the session store, separate from Asynq's own connection
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()
	sessionStore := services.NewSessionStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// Enhancement backend for queued enhance tasks, same selection as the API
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

	// Redis options for Asynq
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.WorkerConcurrency,
			Queues: map[string]int{
				"critical": 6, // 60% of workers
				"default":  3, // 30% of workers
				"low":      1, // 10% of workers
			},
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("Task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	// Telemetry for the worker's own counters
	var metrics *telemetry.Metrics
	if cfg.TelemetryEnabled {
		metrics, err = telemetry.InitMetrics()
		if err != nil {
			logger.Warn("Metrics disabled", "error", err)
		}
	}

	// Create task processor
	processor := queue.NewTaskProcessor(db, nil, sessionStore, enhancer, metrics)

	// Create mux and register handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskCampaignLaunch, processor.LaunchCampaign)
	mux.HandleFunc(queue.TaskPostPublish, processor.PublishPost)
	mux.HandleFunc(queue.TaskAIEnhance, processor.EnhanceDraft)

	// Dispatcher scans for due posts and feeds them into the queue
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	dispatcher := services.NewDispatcher(db, asynqClient,
		time.Duration(cfg.DispatchIntervalSec)*time.Second)
	if err := dispatcher.Start(); err != nil {
		log.Fatal("Failed to start dispatcher:", err)
	}
	defer dispatcher.Stop()

	logger.Info("Starting worker",
		"concurrency", cfg.WorkerConcurrency,
		"redis", cfg.RedisURL,
		"dispatch_interval_sec", cfg.DispatchIntervalSec)

	// Run the asynq server until signalled
	go func() {
		if err := server.Run(mux); err != nil {
			log.Fatal("Failed to start worker:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down worker...")
	server.Shutdown()
}
