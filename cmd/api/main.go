package main

// @title Landmark Guide API
// @version 1.0.0
// @description Отслеживание посещений достопримечательностей в пределах безопасной зоны.
// @description
// @description Основные возможности:
// @description - Прием фиксов позиции и эскалация разрешений на геолокацию
// @description - Учет посещений структур и статистика
// @description - Поток снимков состояния для клиента

// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/landmark-guide/internal/config"
	httpDelivery "github.com/landmark-guide/internal/delivery/http"
	"github.com/landmark-guide/internal/delivery/http/handler"
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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "landmark-guide-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Landmark Guide API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("store_backend", cfg.Store.Backend),
	)

	// 3. Connect to Redis (optional unless it backs the store)
	var redisClient *redis.Client
	if cfg.Store.Backend == "redis" || cfg.Worker.Enabled {
		redisClient, err = redisRepo.NewClient(&cfg.Redis, log)
		if err != nil {
			if cfg.Store.Backend == "redis" {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			log.Warn("Redis unavailable, event streams disabled", zap.Error(err))
		}
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
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

	// 5. Collaborators
	relay := device.NewRelay(cfg.Tracking.PermissionTimeout, log)

	var publisher repository.EventPublisher
	var streamRepo repository.StreamRepository
	if redisClient != nil {
		streamRepo = redisRepo.NewStreamRepository(redisClient, cfg.Worker.StreamReadTimeout, log)
		publisher = redisRepo.NewEventPublisher(streamRepo)
	}

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

	// 6. Engine
	engine := usecase.NewEngine(
		usecase.NewZoneClassifier(
			regionFromConfig(&cfg.Region),
			cfg.Region.BackgroundRadius,
			cfg.Region.RecommendationRadius,
			cfg.Region.AlmostThereRadius,
		),
		usecase.NewFixGate(cfg.Tracking.ForegroundInterval, cfg.Tracking.BackgroundInterval),
		usecase.NewDatasetUseCase(dataset.NewProvider(cfg.Dataset.Path, log), kvStore, log),
		relay,
		publisher,
		visitLogger,
		usecase.EngineConfig{
			VisitRadius: cfg.Region.VisitRadius,
			UserID:      userID(cfg.Analytics.UserID, log),
		},
		log,
	)

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := engine.Start(startCtx); err != nil {
		startCancel()
		log.Fatal("Failed to start engine", zap.Error(err))
	}
	startCancel()

	// 7. In-process fix worker
	var workerManager *worker.WorkerManager
	if cfg.Worker.Enabled && streamRepo != nil {
		workerManager = worker.NewWorkerManager(cfg.Worker.ShutdownTimeout, log)
		workerManager.Register(location.NewFixWorker(streamRepo, engine, relay, fixOwner(cfg.Analytics.UserID), cfg.Worker.ConsumerGroup, log))
		if err := workerManager.Start(context.Background()); err != nil {
			log.Fatal("Failed to start workers", zap.Error(err))
		}
	}

	// 8. HTTP
	server := httpDelivery.NewServer(
		cfg,
		log,
		handler.NewTrackingHandler(engine, relay, log),
		handler.NewStructureHandler(engine, log),
		handler.NewStatsHandler(engine, log),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if workerManager != nil {
		if err := workerManager.Stop(); err != nil {
			log.Error("Error stopping workers", zap.Error(err))
		}
	}

	if err := engine.Close(ctx); err != nil {
		log.Error("Engine did not flush all state", zap.Error(err))
	}

	if dispatcher != nil {
		dispatcher.Stop()
	}

	log.Info("Server stopped successfully")
}

func regionFromConfig(r *config.RegionConfig) domain.Region {
	return domain.Region{
		BottomLeft: domain.Coordinate{Lat: r.BottomLeftLat, Lon: r.BottomLeftLon},
		TopRight:   domain.Coordinate{Lat: r.TopRightLat, Lon: r.TopRightLon},
		Center:     domain.Coordinate{Lat: r.CenterLat, Lon: r.CenterLon},
	}
}

// userID parses the configured analytics user id; a random one is used per
// process when none is configured.
func userID(raw string, log *zap.Logger) uuid.UUID {
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			return id
		}
		log.Warn("Invalid ANALYTICS_USER_ID, generating one", zap.Error(err))
	}
	return uuid.New()
}

// fixOwner is the configured user, or uuid.Nil so the fix worker accepts every fix.
func fixOwner(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
