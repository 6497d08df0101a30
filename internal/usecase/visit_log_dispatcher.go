package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/metrics"
	"go.uber.org/zap"
)

// VisitLogDispatcher batches visit logs for the analytics collector.
// LogVisit never blocks: a full queue drops the entry.
type VisitLogDispatcher struct {
	analyticsRepo repository.AnalyticsRepository
	logger        *zap.Logger
	batchSize     int
	batchInterval time.Duration
	sendTimeout   time.Duration
	queue         chan domain.VisitLog
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewVisitLogDispatcher creates a new dispatcher
func NewVisitLogDispatcher(
	analyticsRepo repository.AnalyticsRepository,
	logger *zap.Logger,
	batchSize int,
	batchInterval time.Duration,
	queueSize int,
) *VisitLogDispatcher {
	if batchSize <= 0 {
		batchSize = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &VisitLogDispatcher{
		analyticsRepo: analyticsRepo,
		logger:        logger,
		batchSize:     batchSize,
		batchInterval: batchInterval,
		sendTimeout:   10 * time.Second,
		queue:         make(chan domain.VisitLog, queueSize),
		stopChan:      make(chan struct{}),
	}
}

// Start starts the dispatcher loop
func (d *VisitLogDispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.processBatches(ctx)
}

// Stop drains what is queued, sends it and waits for the loop to exit
func (d *VisitLogDispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.stopChan)
	})
	d.wg.Wait()
}

// LogVisit implements repository.VisitLogger
func (d *VisitLogDispatcher) LogVisit(entry domain.VisitLog) {
	select {
	case <-d.stopChan:
		metrics.VisitLogsDroppedTotal.WithLabelValues("stopped").Inc()
		return
	default:
	}

	select {
	case d.queue <- entry:
	default:
		metrics.VisitLogsDroppedTotal.WithLabelValues("queue_full").Inc()
		d.logger.Warn("Visit log queue full, dropping entry",
			zap.String("user_id", entry.UserID.String()))
	}
}

func (d *VisitLogDispatcher) processBatches(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.batchInterval)
	defer ticker.Stop()

	var batch []domain.VisitLog

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Visit log dispatcher context cancelled",
				zap.Int("unsent", len(batch)+len(d.queue)))
			return

		case <-d.stopChan:
			batch = d.drain(batch)
			if len(batch) > 0 {
				// parent ctx may be gone already; give the final flush its own deadline
				flushCtx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
				d.sendBatch(flushCtx, batch)
				cancel()
			}
			d.logger.Info("Visit log dispatcher stopped")
			return

		case entry := <-d.queue:
			batch = append(batch, entry)
			if len(batch) >= d.batchSize {
				d.sendBatch(ctx, batch)
				batch = nil
			}

		case <-ticker.C:
			if len(batch) > 0 {
				d.sendBatch(ctx, batch)
				batch = nil
			}
		}
	}
}

func (d *VisitLogDispatcher) drain(batch []domain.VisitLog) []domain.VisitLog {
	for {
		select {
		case entry := <-d.queue:
			batch = append(batch, entry)
		default:
			return batch
		}
	}
}

func (d *VisitLogDispatcher) sendBatch(ctx context.Context, batch []domain.VisitLog) {
	d.logger.Debug("Sending visit log batch", zap.Int("batch_size", len(batch)))

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.analyticsRepo.SendVisits(sendCtx, batch); err != nil {
		metrics.VisitLogsDroppedTotal.WithLabelValues("send_failed").Add(float64(len(batch)))
		d.logger.Warn("Failed to send visit logs", zap.Int("batch_size", len(batch)), zap.Error(err))
		return
	}
	metrics.VisitLogsSentTotal.Add(float64(len(batch)))
}

// NoopVisitLogger is used when analytics is disabled.
type NoopVisitLogger struct{}

func (NoopVisitLogger) LogVisit(domain.VisitLog) {}
