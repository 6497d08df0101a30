package redis

import (
	"context"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
)

type eventPublisher struct {
	streams repository.StreamRepository
}

// NewEventPublisher publishes engine events to their Redis streams.
func NewEventPublisher(streams repository.StreamRepository) repository.EventPublisher {
	return &eventPublisher{streams: streams}
}

func (p *eventPublisher) PublishVisit(ctx context.Context, event *domain.VisitRecordedEvent) error {
	return p.streams.PublishToStream(ctx, domain.StreamVisitRecorded, event)
}

func (p *eventPublisher) PublishTrackingChange(ctx context.Context, event *domain.TrackingChangeEvent) error {
	return p.streams.PublishToStream(ctx, domain.StreamTrackingChange, event)
}
