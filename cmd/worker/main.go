package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/landmark-guide/internal/config"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/infrastructure/analytics"
	"github.com/landmark-guide/internal/infrastructure/dataset"
	"github.com/landmark-guide/internal/infrastructure/device"
	"github.com/landmark-guide/internal/pkg/logger"
	redisRepo "github.com/landmark-guide/internal/repository/redis"
	"github.com/landmark-guide/internal/repository/store"
	"github.com/landmark-guide/internal/usecase"
	"github.com/landmark-guide/internal/worker"
	"github.com/landmark-guide/internal/worker/location"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Check if worker is enabled
	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "landmark-guide-worker")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Landmark Fix Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.String("store_backend", cfg.Store.Backend),
		zap.Duration("stream_read_timeout", cfg.Worker.StreamReadTimeout))

	// 3. Connect to Redis
	redisClient, err := redisRepo.NewClient(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. State store
	kvStore, closeStore, err := store.Open(cfg, redisClient, log)
	if err != nil {
		log.Fatal("Failed to open state store", zap.Error(err))
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("Failed to close state store", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	streamRepo := redisRepo.NewStreamRepository(redisClient, cfg.Worker.StreamReadTimeout, log)

	// devices publish fixes only after the user granted location access
	relay := device.NewRelay(cfg.Tracking.PermissionTimeout, log)
	relay.SetAutoGrant(true)

	var visitLogger repository.VisitLogger = usecase.NoopVisitLogger{}
	var dispatcher *usecase.VisitLogDispatcher
	if cfg.Analytics.Enabled {
		dispatcher = usecase.NewVisitLogDispatcher(
			analytics.NewAnalyticsClient(&cfg.Analytics, log),
			log,
			cfg.Analytics.BatchSize,
			cfg.Analytics.BatchInterval,
			cfg.Analytics.QueueSize,
		)
		dispatcher.Start(context.Background())
		visitLogger = dispatcher
	}

	// fixOwner stays uuid.Nil unless a user is configured, so the worker accepts every fix
	userID, fixOwner := uuid.New(), uuid.Nil
	if cfg.Analytics.UserID != "" {
		if parsed, err := uuid.Parse(cfg.Analytics.UserID); err == nil {
			userID, fixOwner = parsed, parsed
		}
	}

	// 6. Engine
	engine := usecase.NewEngine(
		usecase.NewZoneClassifier(
			domain.Region{
				BottomLeft: domain.Coordinate{Lat: cfg.Region.BottomLeftLat, Lon: cfg.Region.BottomLeftLon},
				TopRight:   domain.Coordinate{Lat: cfg.Region.TopRightLat, Lon: cfg.Region.TopRightLon},
				Center:     domain.Coordinate{Lat: cfg.Region.CenterLat, Lon: cfg.Region.CenterLon},
			},
			cfg.Region.BackgroundRadius,
			cfg.Region.RecommendationRadius,
			cfg.Region.AlmostThereRadius,
		),
		usecase.NewFixGate(cfg.Tracking.ForegroundInterval, cfg.Tracking.BackgroundInterval),
		usecase.NewDatasetUseCase(dataset.NewProvider(cfg.Dataset.Path, log), kvStore, log),
		relay,
		redisRepo.NewEventPublisher(streamRepo),
		visitLogger,
		usecase.EngineConfig{VisitRadius: cfg.Region.VisitRadius, UserID: userID},
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := engine.Start(ctx); err != nil {
		log.Fatal("Failed to start engine", zap.Error(err))
	}

	// a fix stream only exists while the user is exploring
	engine.SetMode(ctx, domain.ModeAdventure)

	// 7. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(cfg.Worker.ShutdownTimeout, log)
	workerManager.Register(location.NewFixWorker(streamRepo, engine, relay, fixOwner, cfg.Worker.ConsumerGroup, log))

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	// Cancel context to stop workers
	cancel()

	// Stop worker manager
	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := engine.Close(closeCtx); err != nil {
		log.Error("Engine did not flush all state", zap.Error(err))
	}

	if dispatcher != nil {
		dispatcher.Stop()
	}

	log.Info("Worker stopped")
}
