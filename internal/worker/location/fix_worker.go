package location

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/pkg/utils"
	"github.com/landmark-guide/internal/usecase"
	"github.com/landmark-guide/internal/worker"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FixHandler is the part of the engine the worker feeds.
type FixHandler interface {
	HandleFix(ctx context.Context, in usecase.FixInput) (domain.FixResult, error)
}

// FixRecorder remembers the latest device position (the device relay).
type FixRecorder interface {
	PushFix(c domain.Coordinate)
}

// FixWorker читает stream:location:fix и передает фиксы в движок
type FixWorker struct {
	*worker.BaseWorker
	streamRepo repository.StreamRepository
	handler    FixHandler
	recorder   FixRecorder
	userID     uuid.UUID
}

// NewFixWorker создает новый FixWorker. recorder может быть nil.
// Если userID не uuid.Nil, фиксы других пользователей пропускаются.
func NewFixWorker(
	streamRepo repository.StreamRepository,
	handler FixHandler,
	recorder FixRecorder,
	userID uuid.UUID,
	consumerGroup string,
	logger *zap.Logger,
) *FixWorker {
	return &FixWorker{
		BaseWorker: worker.NewBaseWorker("location-fix", consumerGroup, logger),
		streamRepo: streamRepo,
		handler:    handler,
		recorder:   recorder,
		userID:     userID,
	}
}

// Start блокирует до Stop или отмены ctx
func (w *FixWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting FixWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.ConsumerName()))

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamLocationFix, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streamRepo.ConsumeStream(consumeCtx, domain.StreamLocationFix, w.ConsumerGroup(), w.ConsumerName())
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil

		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				logger.Info("Fix stream closed")
				return nil
			}
			w.processMessage(ctx, msg)
		}
	}
}

// processMessage never leaves a message pending: malformed ones are acked
// and skipped, engine errors are logged and acked as well, because a
// redelivered fix would be stale anyway.
func (w *FixWorker) processMessage(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	event, err := w.parseMessage(msg)
	if err != nil {
		logger.Warn("Failed to parse message, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.MarkFailed()
		w.ack(ctx, msg.ID)
		return
	}

	if w.userID != uuid.Nil && event.UserID != uuid.Nil && event.UserID != w.userID {
		logger.Debug("Fix for another user, skipping",
			zap.String("message_id", msg.ID),
			zap.String("user_id", event.UserID.String()))
		w.MarkFailed()
		w.ack(ctx, msg.ID)
		return
	}

	coord, _ := event.Coordinate()
	if w.recorder != nil && utils.ValidateCoordinates(coord.Lat, coord.Lon) {
		w.recorder.PushFix(coord)
	}

	result, err := w.handler.HandleFix(ctx, usecase.FixInput{
		Coordinate: coord,
		Background: event.Background,
	})
	if err != nil {
		logger.Warn("Fix rejected",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		w.MarkFailed()
	} else {
		w.MarkProcessed()
		if result.Visited != nil {
			logger.Info("Visit recorded from stream",
				zap.String("message_id", msg.ID),
				zap.Int("structure_id", result.Visited.ID))
		}
	}

	w.ack(ctx, msg.ID)
}

func (w *FixWorker) parseMessage(msg domain.StreamMessage) (*domain.LocationFixEvent, error) {
	var event domain.LocationFixEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if _, ok := event.Coordinate(); !ok {
		return nil, fmt.Errorf("event has no coordinate")
	}
	return &event, nil
}

func (w *FixWorker) ack(ctx context.Context, id string) {
	if err := w.streamRepo.AckMessage(ctx, domain.StreamLocationFix, w.ConsumerGroup(), id); err != nil {
		// не критично - сообщение будет переобработано
		w.Logger().Error("Failed to ack message", zap.String("message_id", id), zap.Error(err))
	}
}
