package repository

import (
	"context"

	"github.com/landmark-guide/internal/domain"
)

// StreamRepository - интерфейс для работы с Redis Streams
type StreamRepository interface {
	// ConsumeStream reads group messages until ctx is cancelled
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	AckMessage(ctx context.Context, stream, group, messageID string) error

	// CreateConsumerGroup is idempotent
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
