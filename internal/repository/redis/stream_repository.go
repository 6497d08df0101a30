package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type streamRepository struct {
	client       *redis.Client
	blockTimeout time.Duration
	logger       *zap.Logger
}

// NewStreamRepository создает новый экземпляр StreamRepository.
// blockTimeout ограничивает каждый XREADGROUP, чтобы отмена контекста была замечена.
func NewStreamRepository(client *redis.Client, blockTimeout time.Duration, logger *zap.Logger) repository.StreamRepository {
	if blockTimeout <= 0 {
		blockTimeout = time.Second
	}
	return &streamRepository{
		client:       client,
		blockTimeout: blockTimeout,
		logger:       logger,
	}
}

// CreateConsumerGroup создаёт consumer group для стрима
func (r *streamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	// "$": only fixes pushed after the group exists; MKSTREAM creates the stream
	err := r.client.XGroupCreateMkStream(ctx, stream, group, "$").Err()
	if err != nil {
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			r.logger.Debug("Consumer group already exists",
				zap.String("stream", stream),
				zap.String("group", group))
			return nil
		}
		r.logger.Error("Failed to create consumer group",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	r.logger.Info("Consumer group created",
		zap.String("stream", stream),
		zap.String("group", group))
	return nil
}

// ConsumeStream first replays messages delivered to this consumer but never
// acked (a crash between read and ack), then reads new ones.
func (r *streamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	msgChan := make(chan domain.StreamMessage, 10)

	go func() {
		defer close(msgChan)

		lastID := "0"

		for {
			if ctx.Err() != nil {
				r.logger.Info("Stream consumer stopped",
					zap.String("stream", stream),
					zap.String("consumer", consumer))
				return
			}

			args := &redis.XReadGroupArgs{
				Group:    group,
				Consumer: consumer,
				Streams:  []string{stream, lastID},
				Count:    10,
			}
			if lastID == ">" {
				args.Block = r.blockTimeout
			}

			result, err := r.client.XReadGroup(ctx, args).Result()
			if err != nil {
				if err == redis.Nil {
					lastID = ">"
					continue
				}
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("Failed to read from stream",
					zap.String("stream", stream),
					zap.Error(err))
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
				continue
			}

			delivered := 0
			for _, s := range result {
				for _, msg := range s.Messages {
					delivered++
					if lastID != ">" {
						lastID = msg.ID
					}
					data, ok := msg.Values["data"].(string)
					if !ok {
						r.logger.Warn("Message does not contain 'data' field, acking",
							zap.String("message_id", msg.ID))
						r.client.XAck(ctx, stream, group, msg.ID)
						continue
					}

					select {
					case msgChan <- domain.StreamMessage{ID: msg.ID, Data: data}:
					case <-ctx.Done():
						return
					}
				}
			}

			// pending backlog drained, switch to new messages
			if lastID != ">" && delivered == 0 {
				lastID = ">"
			}
		}
	}()

	return msgChan, nil
}

// AckMessage подтверждает обработку сообщения
func (r *streamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	if err := r.client.XAck(ctx, stream, group, messageID).Err(); err != nil {
		r.logger.Error("Failed to acknowledge message",
			zap.String("stream", stream),
			zap.String("group", group),
			zap.String("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to acknowledge message: %w", err)
	}
	return nil
}

// PublishToStream публикует JSON-сообщение в поле "data"
func (r *streamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	id, err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"data": string(jsonData),
		},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to publish to stream",
			zap.String("stream", stream),
			zap.Error(err))
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	r.logger.Debug("Message published to stream",
		zap.String("stream", stream),
		zap.String("message_id", id))
	return nil
}
