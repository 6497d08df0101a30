package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/infrastructure/device"
	"github.com/landmark-guide/internal/pkg/errors"
	"github.com/landmark-guide/internal/pkg/utils"
	"github.com/landmark-guide/internal/pkg/validator"
	"github.com/landmark-guide/internal/usecase"
	"github.com/landmark-guide/internal/usecase/dto"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const streamHeartbeat = 15 * time.Second

// TrackingEngine - часть движка, нужная TrackingHandler
type TrackingEngine interface {
	Snapshot() domain.Snapshot
	Subscribe(buffer int) (<-chan domain.Snapshot, func())
	HandleFix(ctx context.Context, in usecase.FixInput) (domain.FixResult, error)
	SetMode(ctx context.Context, mode domain.Mode) domain.Snapshot
	RecommendMode(coord domain.Coordinate) (domain.Mode, error)
	PermissionResult(kind domain.PermissionKind, granted bool) domain.Snapshot
	RevokePermission(kind domain.PermissionKind) domain.Snapshot
	TrackingState() domain.TrackingState
}

// DeviceRelay is the device side of the location provider.
type DeviceRelay interface {
	PushFix(c domain.Coordinate)
	Answer(kind domain.PermissionKind, granted bool) bool
	Acquisition() device.AcquisitionStatus
}

// TrackingHandler обрабатывает фиксы, режим и разрешения
type TrackingHandler struct {
	engine TrackingEngine
	relay  DeviceRelay
	logger *zap.Logger
}

// NewTrackingHandler создает новый экземпляр TrackingHandler
func NewTrackingHandler(engine TrackingEngine, relay DeviceRelay, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		engine: engine,
		relay:  relay,
		logger: logger,
	}
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *TrackingHandler) Health(c *fiber.Ctx) error {
	snap := h.engine.Snapshot()
	return c.JSON(dto.HealthResponse{
		Status:         "healthy",
		DatasetVersion: snap.DatasetVersion,
		TrackingState:  snap.TrackingState.String(),
		Time:           time.Now(),
	})
}

// GetState godoc
// @Summary Current engine snapshot
// @Description Возвращает режим, состояние трекинга, разрешения, статистику и все структуры
// @Tags Tracking
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.Snapshot}
// @Router /api/v1/state [get]
func (h *TrackingHandler) GetState(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.engine.Snapshot(), nil)
}

// StreamState godoc
// @Summary Snapshot stream
// @Description Server-sent events: текущий снимок, затем каждый следующий. Медленный клиент пропускает промежуточные снимки.
// @Tags Tracking
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/v1/state/stream [get]
func (h *TrackingHandler) StreamState(c *fiber.Ctx) error {
	snapshots, unsubscribe := h.engine.Subscribe(1)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		heartbeat := time.NewTicker(streamHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				data, err := json.Marshal(snap)
				if err != nil {
					h.logger.Error("Failed to encode snapshot", zap.Error(err))
					return
				}
				fmt.Fprintf(w, "id: %d\ndata: %s\n\n", snap.Sequence, data)
			case <-heartbeat.C:
				fmt.Fprint(w, ": ping\n\n")
			}
			// клиент отключился
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}

// PostFix godoc
// @Summary Push a location fix
// @Description Передает одно обновление позиции в движок. Отброшенные фиксы (rate limit, трекинг выключен) возвращаются с drop_reason и кодом 200.
// @Tags Tracking
// @Accept json
// @Produce json
// @Param request body dto.FixRequest true "Позиция"
// @Success 200 {object} utils.SuccessResponse{data=domain.FixResult}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/fix [post]
func (h *TrackingHandler) PostFix(c *fiber.Ctx) error {
	var req dto.FixRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	coord := domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
	h.relay.PushFix(coord)

	result, err := h.engine.HandleFix(c.Context(), usecase.FixInput{
		Coordinate: coord,
		Background: req.Background,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, nil)
}

// SetMode godoc
// @Summary Switch mode
// @Description adventure включает трекинг, virtual_tour выключает
// @Tags Tracking
// @Accept json
// @Produce json
// @Param request body dto.ModeRequest true "Режим"
// @Success 200 {object} utils.SuccessResponse{data=domain.Snapshot}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/mode [post]
func (h *TrackingHandler) SetMode(c *fiber.Ctx) error {
	var req dto.ModeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return utils.SendError(c, errors.ErrInvalidMode)
	}

	return utils.SendSuccess(c, h.engine.SetMode(c.Context(), mode), nil)
}

// RecommendMode godoc
// @Summary Onboarding mode suggestion
// @Description adventure, если позиция в радиусе рекомендации от центра зоны
// @Tags Tracking
// @Produce json
// @Param lat query number true "Широта"
// @Param lon query number true "Долгота"
// @Success 200 {object} utils.SuccessResponse{data=dto.RecommendModeResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/recommend-mode [get]
func (h *TrackingHandler) RecommendMode(c *fiber.Ctx) error {
	var req dto.RecommendModeRequest
	if c.Query("lat") != "" {
		lat := c.QueryFloat("lat")
		req.Lat = &lat
	}
	if c.Query("lon") != "" {
		lon := c.QueryFloat("lon")
		req.Lon = &lon
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	mode, err := h.engine.RecommendMode(domain.Coordinate{Lat: *req.Lat, Lon: *req.Lon})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.RecommendModeResponse{Mode: mode}, nil)
}

// AnswerPermission godoc
// @Summary Answer a permission prompt
// @Description Ответ пользователя на системный запрос. Если запрос не ожидается, ответ передается в движок напрямую.
// @Tags Tracking
// @Accept json
// @Produce json
// @Param request body dto.PermissionRequest true "Ответ"
// @Success 200 {object} utils.SuccessResponse{data=dto.PermissionResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/permission [post]
func (h *TrackingHandler) AnswerPermission(c *fiber.Ctx) error {
	var req dto.PermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	kind, _ := domain.ParsePermissionKind(req.Kind)

	resp := dto.PermissionResponse{
		DeliveredToPrompt: h.relay.Answer(kind, *req.Granted),
	}
	if resp.DeliveredToPrompt {
		// engine applies the answer when the prompt returns
		resp.Snapshot = h.engine.Snapshot()
	} else {
		resp.Snapshot = h.engine.PermissionResult(kind, *req.Granted)
	}

	return utils.SendSuccess(c, resp, nil)
}

// RevokePermission godoc
// @Summary Permission revoked in system settings
// @Tags Tracking
// @Accept json
// @Produce json
// @Param request body dto.RevokePermissionRequest true "Уровень разрешения"
// @Success 200 {object} utils.SuccessResponse{data=domain.Snapshot}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/permission/revoke [post]
func (h *TrackingHandler) RevokePermission(c *fiber.Ctx) error {
	var req dto.RevokePermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	kind, _ := domain.ParsePermissionKind(req.Kind)
	return utils.SendSuccess(c, h.engine.RevokePermission(kind), nil)
}

// GetAcquisition godoc
// @Summary Acquisition the device must apply
// @Description Интенсивность получения позиции и ожидающие запросы разрешений; устройство опрашивает этот endpoint
// @Tags Tracking
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=device.AcquisitionStatus}
// @Router /api/v1/tracking/acquisition [get]
func (h *TrackingHandler) GetAcquisition(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.relay.Acquisition(), nil)
}
