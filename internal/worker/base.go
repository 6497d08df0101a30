package worker

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// BaseWorker содержит общую логику для stream-воркеров: остановку,
// имя consumer'а и счетчики сообщений
type BaseWorker struct {
	name          string
	logger        *zap.Logger
	stopChan      chan struct{}
	stopped       bool
	mu            sync.Mutex
	consumerGroup string
	consumerName  string

	processed atomic.Int64
	failed    atomic.Int64
}

// Stats - счетчики сообщений воркера
type Stats struct {
	Processed int64
	Failed    int64
}

// NewBaseWorker создает новый BaseWorker. Имя consumer'а уникально для
// процесса, поэтому несколько реплик делят одну consumer group.
func NewBaseWorker(name, consumerGroup string, logger *zap.Logger) *BaseWorker {
	hostname, _ := os.Hostname()
	return &BaseWorker{
		name:          name,
		logger:        logger.With(zap.String("worker", name)),
		stopChan:      make(chan struct{}),
		consumerGroup: consumerGroup,
		consumerName:  fmt.Sprintf("%s-%d", hostname, os.Getpid()),
	}
}

// Name возвращает имя воркера
func (w *BaseWorker) Name() string {
	return w.name
}

// Stop останавливает воркер; повторный вызов ничего не делает
func (w *BaseWorker) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}

	stats := w.Stats()
	w.logger.Info("Stopping worker",
		zap.Int64("processed", stats.Processed),
		zap.Int64("failed", stats.Failed))
	close(w.stopChan)
	w.stopped = true

	return nil
}

// IsStopped проверяет, остановлен ли воркер
func (w *BaseWorker) IsStopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}

// StopChan возвращает канал остановки
func (w *BaseWorker) StopChan() <-chan struct{} {
	return w.stopChan
}

func (w *BaseWorker) ConsumerGroup() string {
	return w.consumerGroup
}

func (w *BaseWorker) ConsumerName() string {
	return w.consumerName
}

// MarkProcessed counts a message handled end to end.
func (w *BaseWorker) MarkProcessed() {
	w.processed.Add(1)
}

// MarkFailed counts a message that was skipped or rejected.
func (w *BaseWorker) MarkFailed() {
	w.failed.Add(1)
}

func (w *BaseWorker) Stats() Stats {
	return Stats{
		Processed: w.processed.Load(),
		Failed:    w.failed.Load(),
	}
}

// Logger возвращает логгер
func (w *BaseWorker) Logger() *zap.Logger {
	return w.logger
}
