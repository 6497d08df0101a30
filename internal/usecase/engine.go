package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/metrics"
	"github.com/landmark-guide/internal/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// EngineConfig holds the engine settings that are not owned by a component.
type EngineConfig struct {
	// VisitRadius is the max distance in meters between a fix and a
	// landmark point for a visit to count.
	VisitRadius float64
	UserID      uuid.UUID
	Clock       func() time.Time
}

// FixInput is one location update from the provider.
type FixInput struct {
	Coordinate domain.Coordinate
	// Background is true when the app delivered the update while not in the foreground
	Background bool
}

// Engine wires the classifier, tracking machine, resolver, ledger and
// persistence layer together. Every state access goes through mu; side
// effects on the location provider run on goroutines owned by the engine.
type Engine struct {
	classifier  *ZoneClassifier
	gate        *FixGate
	datasets    *DatasetUseCase
	provider    repository.LocationProvider
	publisher   repository.EventPublisher
	visitLogger repository.VisitLogger
	logger      *zap.Logger
	config      EngineConfig

	mu      sync.Mutex
	machine *TrackingMachine
	ledger  *VisitLedger
	state   *State
	lastFix *domain.Coordinate
	seq     uint64
	closed  bool

	prompts     singleflight.Group
	acquisition chan domain.TrackingState

	subMu       sync.Mutex
	subscribers map[int]chan domain.Snapshot
	nextSubID   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine создает движок. Start нужно вызвать до любых других операций.
func NewEngine(
	classifier *ZoneClassifier,
	gate *FixGate,
	datasets *DatasetUseCase,
	provider repository.LocationProvider,
	publisher repository.EventPublisher,
	visitLogger repository.VisitLogger,
	config EngineConfig,
	logger *zap.Logger,
) *Engine {
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if visitLogger == nil {
		visitLogger = NoopVisitLogger{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		classifier:  classifier,
		gate:        gate,
		datasets:    datasets,
		provider:    provider,
		publisher:   publisher,
		visitLogger: visitLogger,
		logger:      logger,
		config:      config,
		machine:     NewTrackingMachine(),
		acquisition: make(chan domain.TrackingState, 1),
		subscribers: make(map[int]chan domain.Snapshot),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start loads persisted state and restores the stored mode.
func (e *Engine) Start(ctx context.Context) error {
	state, err := e.datasets.Load(ctx)
	if err != nil {
		return err
	}

	e.wg.Add(1)
	go e.runAcquisition()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = state
	e.ledger = NewVisitLedger(e.datasets, state, e.config.Clock, e.logger)

	if state.Mode == domain.ModeAdventure {
		prev := e.machine.State()
		e.dispatch(prev, e.machine.SetMode(domain.ModeAdventure))
	}

	e.logger.Info("Engine started",
		zap.String("dataset_version", state.Version),
		zap.String("mode", state.Mode.String()),
		zap.Int("structures", len(state.Structures)),
		zap.Int("points", len(state.Points)))

	e.notifyLocked()
	return nil
}

// Close stops background work and retries any unsaved state.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()

	e.subMu.Lock()
	for id, ch := range e.subscribers {
		close(ch)
		delete(e.subscribers, id)
	}
	e.subMu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ledger == nil {
		return nil
	}
	return e.ledger.Flush(ctx)
}

func (e *Engine) SetMode(ctx context.Context, mode domain.Mode) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.machine.State()
	cmds := e.machine.SetMode(mode)
	if prev == domain.TrackingInactive && e.machine.State() != domain.TrackingInactive {
		e.gate.Reset()
	}
	if e.ledger != nil {
		e.ledger.SetMode(ctx, mode)
	}

	e.logger.Info("Mode changed", zap.String("mode", mode.String()))
	e.dispatch(prev, cmds)
	return e.notifyLocked()
}

// HandleFix runs one location update through the pipeline. Dropped updates
// are reported in the result, not as errors.
func (e *Engine) HandleFix(ctx context.Context, in FixInput) (domain.FixResult, error) {
	metrics.FixesReceivedTotal.Inc()

	if !in.Coordinate.Valid() {
		metrics.FixesDroppedTotal.WithLabelValues(domain.DropInvalid).Inc()
		return domain.FixResult{DropReason: domain.DropInvalid}, errors.ErrInvalidCoordinates
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := domain.FixResult{TrackingState: e.machine.State()}

	if e.state == nil || e.machine.State() == domain.TrackingInactive {
		metrics.FixesDroppedTotal.WithLabelValues(domain.DropInactive).Inc()
		result.DropReason = domain.DropInactive
		return result, nil
	}

	now := e.config.Clock()
	if !e.gate.Allow(now, in.Background) {
		metrics.FixesDroppedTotal.WithLabelValues(domain.DropRateLimited).Inc()
		result.DropReason = domain.DropRateLimited
		return result, nil
	}

	result.Accepted = true
	coord := in.Coordinate
	e.lastFix = &coord

	tier := e.classifier.Classify(coord)
	metrics.ProximityTier.Set(float64(tier))
	prev := e.machine.State()
	e.dispatch(prev, e.machine.ObserveTier(tier))

	result.ProximityTier = tier
	result.TrackingState = e.machine.State()
	result.AlmostThere = e.classifier.IsAlmostThere(coord)

	nearest, ok := ResolveNearest(coord, e.state.Points)
	if !ok {
		e.logger.Debug("No landmark points, visit detection skipped", zap.Error(errors.ErrEmptyLandmarkSet))
		e.notifyLocked()
		return result, nil
	}

	dist := nearest.Distance
	result.DistanceM = &dist
	if nearest.Point.IsLandmark() {
		id := nearest.Point.StructureID
		result.NearestID = &id
	}

	if e.visitEligible(tier, nearest) {
		visited, recorded, err := e.ledger.RecordVisit(ctx, nearest.Point.StructureID, e.machine.Mode())
		if err != nil {
			e.logger.Warn("Visit not recorded",
				zap.Int("structure_id", nearest.Point.StructureID),
				zap.Error(err))
		} else if recorded {
			result.Visited = visited
			e.afterVisit(visited, coord, now)
		}
	}

	e.notifyLocked()
	return result, nil
}

// PollCurrentFix asks the provider for its current fix and handles it. No fix
// yet is not an error.
func (e *Engine) PollCurrentFix(ctx context.Context) (domain.FixResult, error) {
	fix, err := e.provider.CurrentFix(ctx)
	if err != nil {
		return domain.FixResult{}, err
	}
	if fix == nil {
		return domain.FixResult{DropReason: domain.DropNoFix, TrackingState: e.TrackingState()}, nil
	}
	return e.HandleFix(ctx, FixInput{Coordinate: *fix})
}

// PermissionResult delivers an answer to a permission prompt.
func (e *Engine) PermissionResult(kind domain.PermissionKind, granted bool) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Info("Permission answered",
		zap.String("kind", kind.String()),
		zap.Bool("granted", granted))

	prev := e.machine.State()
	e.dispatch(prev, e.machine.PermissionResult(kind, granted))
	return e.notifyLocked()
}

// RevokePermission handles a permission withdrawn outside the app.
func (e *Engine) RevokePermission(kind domain.PermissionKind) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.logger.Warn("Permission revoked", zap.String("kind", kind.String()))

	prev := e.machine.State()
	e.dispatch(prev, e.machine.Revoke(kind))
	return e.notifyLocked()
}

func (e *Engine) MarkOpened(ctx context.Context, id int) (*domain.Structure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger == nil {
		return nil, errors.ErrStructureNotFound
	}
	s, err := e.ledger.MarkOpened(ctx, id)
	if err != nil {
		return nil, err
	}
	e.notifyLocked()
	return s, nil
}

func (e *Engine) ToggleLiked(ctx context.Context, id int) (*domain.Structure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger == nil {
		return nil, errors.ErrStructureNotFound
	}
	s, err := e.ledger.ToggleLiked(ctx, id)
	if err != nil {
		return nil, err
	}
	e.notifyLocked()
	return s, nil
}

func (e *Engine) ResetVisits(ctx context.Context) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger != nil {
		e.ledger.ResetVisits(ctx)
	}
	return e.notifyLocked()
}

func (e *Engine) ResetLikes(ctx context.Context) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger != nil {
		e.ledger.ResetLikes(ctx)
	}
	return e.notifyLocked()
}

func (e *Engine) DismissLastVisited(ctx context.Context) domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ledger != nil {
		e.ledger.DismissLastVisited(ctx)
	}
	return e.notifyLocked()
}

// RecommendMode is the onboarding suggestion for a position.
func (e *Engine) RecommendMode(coord domain.Coordinate) (domain.Mode, error) {
	if !coord.Valid() {
		return domain.ModeVirtualTour, errors.ErrInvalidCoordinates
	}
	return e.classifier.RecommendMode(coord), nil
}

func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) TrackingState() domain.TrackingState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.State()
}

func (e *Engine) Structures() []domain.Structure {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return nil
	}
	out := make([]domain.Structure, len(e.state.Structures))
	for i, s := range e.state.Structures {
		out[i] = s.Clone()
	}
	return out
}

func (e *Engine) Structure(id int) (domain.Structure, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != nil {
		if idx, ok := e.state.StructureIndex(id); ok {
			return e.state.Structures[idx].Clone(), nil
		}
	}
	return domain.Structure{}, errors.ErrStructureNotFound.WithDetails(map[string]interface{}{"structure_id": id})
}

func (e *Engine) Statistics() domain.VisitStatistics {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return domain.VisitStatistics{}
	}
	return e.state.Statistics
}

// Subscribe returns a channel of snapshots starting with the current one.
// A subscriber that falls behind only ever misses intermediate snapshots.
// The returned func unsubscribes and closes the channel.
func (e *Engine) Subscribe(buffer int) (<-chan domain.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Snapshot, buffer)

	e.mu.Lock()
	ch <- e.snapshotLocked()
	e.subMu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subscribers[id] = ch
	e.subMu.Unlock()
	e.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.subMu.Lock()
			defer e.subMu.Unlock()
			if _, ok := e.subscribers[id]; ok {
				delete(e.subscribers, id)
				close(ch)
			}
		})
	}
}

func (e *Engine) visitEligible(tier domain.ProximityTier, nearest NearestLandmark) bool {
	return e.machine.Mode() == domain.ModeAdventure &&
		tier == domain.TierInside &&
		nearest.Point.IsLandmark() &&
		nearest.Distance <= e.config.VisitRadius
}

// afterVisit fans the visit out; neither side call can block or fail the
// visit path.
func (e *Engine) afterVisit(visited *domain.Structure, coord domain.Coordinate, at time.Time) {
	e.visitLogger.LogVisit(domain.VisitLog{
		UserID:     e.config.UserID,
		Coordinate: coord,
		Timestamp:  at,
	})

	if e.publisher == nil || e.closed {
		return
	}

	event := &domain.VisitRecordedEvent{
		EventID:     uuid.New(),
		UserID:      e.config.UserID,
		StructureID: visited.ID,
		VisitOrder:  visited.VisitOrder,
		Coordinate:  coord,
		VisitedAt:   at,
		Statistics:  e.state.Statistics,
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.publisher.PublishVisit(e.ctx, event); err != nil {
			e.logger.Warn("Failed to publish visit event",
				zap.Int("structure_id", event.StructureID),
				zap.Error(err))
		}
	}()
}

// dispatch runs machine commands. Called with mu held; nothing here blocks.
func (e *Engine) dispatch(prev domain.TrackingState, cmds []TrackingCommand) {
	if next := e.machine.State(); next != prev {
		metrics.TrackingTransitionsTotal.WithLabelValues(next.String()).Inc()
		e.logger.Info("Tracking state changed",
			zap.String("from", prev.String()),
			zap.String("to", next.String()))
	}

	for _, cmd := range cmds {
		e.logger.Debug("Tracking command", zap.String("command", cmd.String()))
		switch cmd {
		case CmdRequestForeground:
			e.requestPermission(domain.PermissionForeground)
		case CmdRequestBackground:
			e.requestPermission(domain.PermissionBackground)
		case CmdAcquireForeground:
			e.setAcquisition(domain.TrackingForegroundOnly)
		case CmdAcquireBackground:
			e.setAcquisition(domain.TrackingBackground)
		case CmdStopAcquisition:
			e.setAcquisition(domain.TrackingInactive)
		}
	}
}

// requestPermission prompts on its own goroutine. Concurrent prompts of the
// same kind share one provider call.
func (e *Engine) requestPermission(kind domain.PermissionKind) {
	if e.closed {
		return
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		v, err, shared := e.prompts.Do(kind.String(), func() (interface{}, error) {
			granted, err := e.provider.RequestPermission(e.ctx, kind)
			return granted, err
		})
		if shared {
			e.logger.Debug("Permission prompt coalesced", zap.String("kind", kind.String()))
		}
		if err != nil {
			e.logger.Warn("Permission prompt produced no answer",
				zap.String("kind", kind.String()),
				zap.Error(err))
			e.mu.Lock()
			e.machine.PermissionAbandoned(kind)
			e.notifyLocked()
			e.mu.Unlock()
			return
		}

		e.PermissionResult(kind, v.(bool))
	}()
}

// setAcquisition hands the latest target to the acquisition goroutine; an
// older target not yet applied is replaced.
func (e *Engine) setAcquisition(state domain.TrackingState) {
	select {
	case <-e.acquisition:
	default:
	}
	e.acquisition <- state
}

func (e *Engine) runAcquisition() {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case state := <-e.acquisition:
			if err := e.provider.SetAcquisition(e.ctx, state); err != nil {
				e.logger.Warn("Failed to switch location acquisition",
					zap.String("state", state.String()),
					zap.Error(err))
			}
			if e.publisher == nil {
				continue
			}
			event := &domain.TrackingChangeEvent{State: state, ChangedAt: e.config.Clock()}
			if err := e.publisher.PublishTrackingChange(e.ctx, event); err != nil {
				e.logger.Warn("Failed to publish tracking change", zap.Error(err))
			}
		}
	}
}

func (e *Engine) snapshotLocked() domain.Snapshot {
	st := e.machine.Status()
	snap := domain.Snapshot{
		Sequence:             e.seq,
		Mode:                 st.Mode,
		TrackingState:        st.State,
		ProximityTier:        st.Tier,
		TierKnown:            st.TierKnown,
		ForegroundPermission: st.Foreground,
		BackgroundPermission: st.Background,
		PermissionDenied:     st.PermissionDenied,
		TakenAt:              e.config.Clock(),
	}

	if e.lastFix != nil {
		c := *e.lastFix
		snap.LastFix = &c
	}

	if e.state != nil {
		snap.DatasetVersion = e.state.Version
		snap.Statistics = e.state.Statistics
		snap.Structures = make([]domain.Structure, len(e.state.Structures))
		for i, s := range e.state.Structures {
			snap.Structures[i] = s.Clone()
		}
		snap.LastVisited = e.ledger.LastVisited()
	}

	return snap
}

// notifyLocked publishes a new snapshot to subscribers. Called with mu held.
func (e *Engine) notifyLocked() domain.Snapshot {
	e.seq++
	snap := e.snapshotLocked()

	e.subMu.Lock()
	defer e.subMu.Unlock()

	for _, ch := range e.subscribers {
		select {
		case ch <- snap:
			continue
		default:
		}
		// full: drop the oldest so the latest always gets through
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}
