package device

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/landmark-guide/internal/domain"
	"go.uber.org/zap"
)

// Relay is the server side of the device location API. The device pushes
// fixes and permission answers over HTTP; the engine sees an ordinary
// location provider.
type Relay struct {
	permissionTimeout time.Duration
	logger            *zap.Logger

	mu          sync.Mutex
	autoGrant   bool
	lastFix     *domain.Coordinate
	acquisition domain.TrackingState
	changedAt   time.Time
	pending     map[domain.PermissionKind]chan bool
}

// AcquisitionStatus is what the device polls to learn how to track.
type AcquisitionStatus struct {
	State          domain.TrackingState    `json:"state"`
	ChangedAt      time.Time               `json:"changed_at"`
	PendingPrompts []domain.PermissionKind `json:"pending_prompts"`
}

func NewRelay(permissionTimeout time.Duration, logger *zap.Logger) *Relay {
	return &Relay{
		permissionTimeout: permissionTimeout,
		logger:            logger,
		acquisition:       domain.TrackingInactive,
		pending:           make(map[domain.PermissionKind]chan bool),
	}
}

func (r *Relay) CurrentFix(ctx context.Context) (*domain.Coordinate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastFix == nil {
		return nil, nil
	}
	c := *r.lastFix
	return &c, nil
}

// RequestPermission waits for the device to answer. No answer within the
// timeout counts as a denial.
func (r *Relay) RequestPermission(ctx context.Context, kind domain.PermissionKind) (bool, error) {
	r.mu.Lock()
	if r.autoGrant {
		r.mu.Unlock()
		return true, nil
	}
	ch, ok := r.pending[kind]
	if !ok {
		ch = make(chan bool, 1)
		r.pending[kind] = ch
	}
	r.mu.Unlock()

	r.logger.Info("Waiting for permission answer", zap.String("kind", kind.String()))

	timer := time.NewTimer(r.permissionTimeout)
	defer timer.Stop()

	select {
	case granted := <-ch:
		return granted, nil
	case <-timer.C:
		r.clearPending(kind, ch)
		r.logger.Warn("Permission prompt timed out", zap.String("kind", kind.String()))
		return false, nil
	case <-ctx.Done():
		r.clearPending(kind, ch)
		return false, ctx.Err()
	}
}

func (r *Relay) SetAcquisition(ctx context.Context, state domain.TrackingState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.acquisition != state {
		r.logger.Info("Acquisition changed",
			zap.String("from", r.acquisition.String()),
			zap.String("to", state.String()))
	}
	r.acquisition = state
	r.changedAt = time.Now()
	return nil
}

// Answer delivers the device's answer to a pending prompt. It returns false
// when no prompt of that kind is waiting.
func (r *Relay) Answer(kind domain.PermissionKind, granted bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.pending[kind]
	if !ok {
		return false
	}
	delete(r.pending, kind)
	ch <- granted
	return true
}

// SetAutoGrant makes every prompt succeed at once. Used by the headless
// worker, where devices only publish fixes after the user granted access.
func (r *Relay) SetAutoGrant(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoGrant = enabled
}

// PushFix records the latest device position.
func (r *Relay) PushFix(c domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFix = &c
}

func (r *Relay) Acquisition() AcquisitionStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := AcquisitionStatus{
		State:          r.acquisition,
		ChangedAt:      r.changedAt,
		PendingPrompts: make([]domain.PermissionKind, 0, len(r.pending)),
	}
	for kind := range r.pending {
		status.PendingPrompts = append(status.PendingPrompts, kind)
	}
	sort.Slice(status.PendingPrompts, func(i, j int) bool {
		return status.PendingPrompts[i] < status.PendingPrompts[j]
	})
	return status
}

func (r *Relay) clearPending(kind domain.PermissionKind, ch chan bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[kind] == ch {
		delete(r.pending, kind)
	}
}
