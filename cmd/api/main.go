package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/config"
	"alfredoptarigan/resume-screener/internal/handlers"
	"alfredoptarigan/resume-screener/internal/logger"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Invalid configuration", zap.Error(err))
	}
	log.Info("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	runRepo := repositories.NewScreeningRunRepository(db)
	candidateRepo := repositories.NewCandidateRecordRepository(db)
	log.Info("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	}
	log.Info("✅ Gemini AI initialized successfully")

	embedOpts := []services.EmbeddingOption{services.WithBatchSize(cfg.Embedding.BatchSize)}
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("⚠️  Redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			embedOpts = append(embedOpts, services.WithEmbeddingCache(
				services.NewRedisEmbeddingCache(rdb, cfg.Redis.CacheTTL, log),
			))
			log.Info("✅ Embedding cache connected", zap.String("addr", cfg.Redis.Address))
		}
	}
	embedder := services.NewEmbeddingClient(
		geminiService,
		cfg.Embedding.Model,
		services.NewRetryPolicy(cfg.Embedding.MaxRetries, cfg.Embedding.RetryDelay),
		log,
		embedOpts...,
	)

	// Initialize Qdrant
	var (
		indexer  services.ChunkIndexer
		searcher handlers.ChunkSearcher
	)
	if cfg.Qdrant.Enabled {
		qdrantService, err := services.NewQdrantService(
			cfg.Qdrant.URL,
			cfg.Qdrant.APIKey,
			cfg.Qdrant.Collection,
			cfg.Qdrant.VectorSize,
			log,
		)
		if err != nil {
			log.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
		}
		if err := qdrantService.InitCollection(ctx); err != nil {
			log.Fatal("❌ Failed to initialize Qdrant collection", zap.Error(err))
		}
		indexer = qdrantService
		searcher = qdrantService
		log.Info("✅ Qdrant initialized successfully")
	}

	pipeline := services.NewScreeningPipeline(
		geminiService,
		embedder,
		indexer,
		services.PipelineOptionsFromConfig(cfg.Pipeline),
		log,
	)
	screeningService := services.NewScreeningService(runRepo, candidateRepo, storageService, pipeline, log)
	log.Info("✅ Services initialized successfully")

	worker := services.NewWorker(
		runRepo,
		screeningService,
		cfg.Worker.Concurrency,
		cfg.Worker.PollInterval,
		log,
	)
	worker.Start(ctx)

	// Initialize Handlers
	screeningHandler := handlers.NewScreeningHandler(runRepo, storageService, worker, log)
	resultHandler := handlers.NewResultHandler(runRepo)
	candidatesHandler := handlers.NewCandidatesHandler(candidateRepo, embedder, searcher, log)
	log.Info("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Resume Screening API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Routes
	api := app.Group("/api/v1")
	handlers.RegisterRoutes(api, screeningHandler, resultHandler, candidatesHandler)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Screening API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/screenings",
				"GET /api/v1/screenings/:id",
				"GET /api/v1/job-postings/:id/candidates",
				"GET /api/v1/job-postings/:id/search?q=",
				"GET /metrics",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		worker.Stop()
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
