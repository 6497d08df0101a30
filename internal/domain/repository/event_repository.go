package repository

import (
	"context"

	"github.com/landmark-guide/internal/domain"
)

// EventPublisher fans engine events out of the process. Failures are logged
// by callers and never abort the operation that produced the event.
type EventPublisher interface {
	PublishVisit(ctx context.Context, event *domain.VisitRecordedEvent) error
	PublishTrackingChange(ctx context.Context, event *domain.TrackingChangeEvent) error
}

// VisitLogger is the remote logging collaborator. LogVisit must return
// immediately.
type VisitLogger interface {
	LogVisit(entry domain.VisitLog)
}

// AnalyticsRepository delivers batches of visit logs to the collector.
type AnalyticsRepository interface {
	SendVisits(ctx context.Context, entries []domain.VisitLog) error
}
