package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/landmark-guide/internal/config"
	"github.com/landmark-guide/internal/delivery/http/handler"
	"github.com/landmark-guide/internal/delivery/http/middleware"
	"github.com/landmark-guide/internal/metrics"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	_ "github.com/landmark-guide/docs"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	trackingHandler  *handler.TrackingHandler
	structureHandler *handler.StructureHandler
	statsHandler     *handler.StatsHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	trackingHandler *handler.TrackingHandler,
	structureHandler *handler.StructureHandler,
	statsHandler *handler.StatsHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Landmark Guide",
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		trackingHandler:  trackingHandler,
		structureHandler: structureHandler,
		statsHandler:     statsHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App exposes the fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		// SSE must not be buffered by the compressor
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/v1/state/stream"
		},
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Prometheus
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", s.trackingHandler.Health)

	// Tracking
	api.Get("/state", s.trackingHandler.GetState)
	api.Get("/state/stream", s.trackingHandler.StreamState)
	api.Post("/fix", s.trackingHandler.PostFix)
	api.Post("/mode", s.trackingHandler.SetMode)
	api.Get("/recommend-mode", s.trackingHandler.RecommendMode)
	api.Post("/permission", s.trackingHandler.AnswerPermission)
	api.Post("/permission/revoke", s.trackingHandler.RevokePermission)
	api.Get("/tracking/acquisition", s.trackingHandler.GetAcquisition)

	// Structures
	api.Get("/structures", s.structureHandler.ListStructures)
	api.Get("/structures/:id", s.structureHandler.GetStructure)
	api.Post("/structures/:id/open", s.structureHandler.OpenStructure)
	api.Post("/structures/:id/like", s.structureHandler.ToggleLike)
	api.Post("/visits/reset", s.structureHandler.ResetVisits)
	api.Post("/likes/reset", s.structureHandler.ResetLikes)
	api.Delete("/last-visited", s.structureHandler.DismissLastVisited)

	// Stats
	api.Get("/stats", s.statsHandler.GetStatistics)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		errCode := "INTERNAL_SERVER_ERROR"
		if code == fiber.StatusNotFound {
			errCode = "NOT_FOUND"
		}

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    errCode,
				"message": err.Error(),
			},
		})
	}
}
