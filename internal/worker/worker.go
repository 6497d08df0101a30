package worker

import (
	"context"
)

// Worker - долгоживущий потребитель, управляемый WorkerManager
type Worker interface {
	// Start blocks until ctx is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop must be safe to call more than once
	Stop() error

	Name() string
}
