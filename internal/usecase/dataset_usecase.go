package usecase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"sync"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/domain/repository"
	"github.com/landmark-guide/internal/metrics"
	"github.com/landmark-guide/internal/pkg/errors"
	"go.uber.org/zap"
)

// Storage keys. The dataset version tag is written last so an interrupted
// migration runs again on the next launch.
const (
	KeyDatasetVersion = "dataset_version"
	KeyStructures     = "structures"
	KeyPoints         = "landmark_points"
	KeyStatistics     = "visit_statistics"
	KeyLastVisited    = "last_visited"
	KeyMode           = "mode"
)

var stateKeys = []string{KeyStructures, KeyPoints, KeyStatistics, KeyLastVisited, KeyMode}

// errCorruptState marks stored data that was read but cannot be used, as
// opposed to a store that could not be read at all.
var errCorruptState = stderrors.New("stored state is corrupt")

// State is every mutable collection the engine persists.
type State struct {
	Version       string
	Structures    []domain.Structure
	Points        []domain.LandmarkPoint
	Statistics    domain.VisitStatistics
	LastVisitedID *int
	Mode          domain.Mode

	// what this session did, for merging into stored state that could not
	// be read at startup
	visitsReset  bool
	likesReset   bool
	firstVisitOn string
}

// StructureIndex returns the slice index of the structure with id.
func (s *State) StructureIndex(id int) (int, bool) {
	for i := range s.Structures {
		if s.Structures[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// DatasetUseCase is the persistence and versioning layer: it merges the
// bundled static dataset with stored dynamic state and re-serializes whole
// collections after every mutation.
type DatasetUseCase struct {
	provider repository.DatasetProvider
	store    repository.KVStore
	logger   *zap.Logger

	mu    sync.Mutex
	dirty map[string]bool
	// unverified: the session started on defaults because the store could
	// not be read; nothing is written until reconcile succeeds
	unverified bool
}

// NewDatasetUseCase создает новый экземпляр DatasetUseCase
func NewDatasetUseCase(
	provider repository.DatasetProvider,
	store repository.KVStore,
	logger *zap.Logger,
) *DatasetUseCase {
	return &DatasetUseCase{
		provider: provider,
		store:    store,
		logger:   logger,
		dirty:    make(map[string]bool),
	}
}

// Load builds the startup state. Storage failures never fail the load: when
// the store cannot be read the session runs on bundled defaults and is merged
// into the stored state before anything is written.
func (uc *DatasetUseCase) Load(ctx context.Context) (*State, error) {
	bundled, err := uc.loadBundled(ctx)
	if err != nil {
		return nil, err
	}

	stored, err := uc.getString(ctx, KeyDatasetVersion)
	if err != nil {
		return uc.unverifiedDefaults(bundled, err), nil
	}

	if stored == bundled.Version {
		state, err := uc.loadStored(ctx, bundled)
		if err == nil {
			uc.logger.Info("Loaded persisted state",
				zap.String("version", state.Version),
				zap.Int("structures", len(state.Structures)),
				zap.Int("visited", state.Statistics.TotalVisitedCount))
			return state, nil
		}
		if !stderrors.Is(err, errCorruptState) {
			return uc.unverifiedDefaults(bundled, err), nil
		}

		uc.logger.Warn("Persisted state unreadable, re-seeding from bundle", zap.Error(err))
		state = uc.defaults(bundled)
		if err := uc.seed(ctx, state); err != nil {
			uc.logger.Warn("Re-seed not stored, dirty keys retried on next mutation",
				zap.Strings("dirty", uc.DirtyKeys()),
				zap.Error(err))
		}
		return state, nil
	}

	state := uc.defaults(bundled)
	if stored != "" {
		uc.logger.Info("Dataset version changed, migrating dynamic state",
			zap.String("from", stored),
			zap.String("to", bundled.Version))
		if err := uc.mergePrevious(ctx, state); err != nil {
			return uc.unverifiedDefaults(bundled, err), nil
		}
	} else {
		uc.logger.Info("First launch, seeding dataset", zap.String("version", bundled.Version))
	}

	if err := uc.seed(ctx, state); err != nil {
		if stderrors.Is(err, errors.ErrVersionMismatch) {
			uc.logger.Error("Dataset version changed during migration, using bundled defaults", zap.Error(err))
			return uc.defaults(bundled), nil
		}
		uc.logger.Warn("Seed not stored, dirty keys retried on next mutation",
			zap.Strings("dirty", uc.DirtyKeys()),
			zap.Error(err))
	}
	return state, nil
}

// unverifiedDefaults starts the session on bundled defaults while the stored
// state is unreadable.
func (uc *DatasetUseCase) unverifiedDefaults(bundled *domain.Dataset, cause error) *State {
	uc.logger.Warn("Stored state unavailable, session starts from bundled defaults", zap.Error(cause))
	uc.mu.Lock()
	uc.unverified = true
	uc.mu.Unlock()
	return uc.defaults(bundled)
}

// Persist writes the given keys plus every key left dirty by an earlier
// failure. The dataset version tag goes last and only after every collection
// was stored. Failures are recorded for retry and returned wrapped in
// ErrPersistenceFailure.
func (uc *DatasetUseCase) Persist(ctx context.Context, state *State, keys ...string) error {
	uc.mu.Lock()
	unverified := uc.unverified
	uc.mu.Unlock()

	if unverified {
		if err := uc.reconcile(ctx, state); err != nil {
			uc.mu.Lock()
			for _, k := range keys {
				uc.dirty[k] = true
			}
			uc.mu.Unlock()
			metrics.PersistenceFailuresTotal.WithLabelValues(KeyDatasetVersion).Inc()
			uc.logger.Warn("Stored state still unreadable, session kept in memory only", zap.Error(err))
			return fmt.Errorf("%w: %v", errors.ErrPersistenceFailure, err)
		}
	}

	uc.mu.Lock()
	pending := make(map[string]bool, len(keys)+len(uc.dirty))
	for k := range uc.dirty {
		pending[k] = true
	}
	uc.mu.Unlock()
	for _, k := range keys {
		pending[k] = true
	}

	writeVersion := pending[KeyDatasetVersion]
	delete(pending, KeyDatasetVersion)

	ordered := make([]string, 0, len(pending))
	for k := range pending {
		ordered = append(ordered, k)
	}
	sort.Strings(ordered)

	var firstErr error
	for _, key := range ordered {
		uc.recordWrite(key, uc.writeKey(ctx, state, key), &firstErr)
	}

	if writeVersion {
		if firstErr != nil {
			// the tag must not point at collections that were not stored
			uc.markDirty(KeyDatasetVersion)
		} else {
			uc.recordWrite(KeyDatasetVersion, uc.writeKey(ctx, state, KeyDatasetVersion), &firstErr)
		}
	}

	return firstErr
}

func (uc *DatasetUseCase) recordWrite(key string, err error, firstErr *error) {
	uc.mu.Lock()
	if err != nil {
		uc.dirty[key] = true
	} else {
		delete(uc.dirty, key)
	}
	uc.mu.Unlock()

	if err == nil {
		return
	}
	metrics.PersistenceFailuresTotal.WithLabelValues(key).Inc()
	uc.logger.Warn("Failed to persist state, will retry on next mutation",
		zap.String("key", key),
		zap.Error(err))
	if *firstErr == nil {
		*firstErr = fmt.Errorf("persist %s: %w: %v", key, errors.ErrPersistenceFailure, err)
	}
}

// reconcile reads the store again for an unverified session and merges the
// session into what it holds, so bundled defaults never overwrite visits
// stored by earlier sessions. On success every key is marked dirty.
func (uc *DatasetUseCase) reconcile(ctx context.Context, state *State) error {
	stored, err := uc.getString(ctx, KeyDatasetVersion)
	if err != nil {
		return err
	}

	if stored != "" {
		prev, err := uc.readPrevious(ctx)
		switch {
		case err == nil:
			mergeSession(state, prev)
		case stderrors.Is(err, errCorruptState):
			uc.logger.Warn("Stored state corrupt, session state replaces it", zap.Error(err))
		default:
			return err
		}
	}

	uc.mu.Lock()
	uc.unverified = false
	for _, k := range stateKeys {
		uc.dirty[k] = true
	}
	uc.dirty[KeyDatasetVersion] = true
	uc.mu.Unlock()

	uc.logger.Info("Session merged into stored state",
		zap.String("stored_version", stored),
		zap.String("version", state.Version),
		zap.Int("visited", state.Statistics.TotalVisitedCount))
	return nil
}

// Flush retries every dirty key.
func (uc *DatasetUseCase) Flush(ctx context.Context, state *State) error {
	return uc.Persist(ctx, state)
}

// DirtyKeys returns the keys awaiting a retry.
func (uc *DatasetUseCase) DirtyKeys() []string {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	keys := make([]string, 0, len(uc.dirty))
	for k := range uc.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (uc *DatasetUseCase) loadBundled(ctx context.Context) (*domain.Dataset, error) {
	bundled, err := uc.provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bundled dataset: %w", err)
	}

	orphans, err := bundled.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidDataset, err)
	}

	if len(orphans) > 0 {
		uc.logger.Warn("Dropping landmark points with unknown structure ids", zap.Ints("point_indexes", orphans))
		drop := make(map[int]bool, len(orphans))
		for _, i := range orphans {
			drop[i] = true
		}
		kept := make([]domain.LandmarkPoint, 0, len(bundled.Points)-len(orphans))
		for i, p := range bundled.Points {
			if !drop[i] {
				kept = append(kept, p)
			}
		}
		bundled.Points = kept
	}

	if len(bundled.Points) == 0 {
		uc.logger.Error("Bundled dataset has no landmark points, visit detection disabled",
			zap.String("version", bundled.Version),
			zap.Error(errors.ErrEmptyLandmarkSet))
	}

	return bundled, nil
}

// defaults is the bundle with every dynamic field at its first-install value.
func (uc *DatasetUseCase) defaults(bundled *domain.Dataset) *State {
	state := &State{
		Version:    bundled.Version,
		Structures: make([]domain.Structure, len(bundled.Structures)),
		Points:     make([]domain.LandmarkPoint, len(bundled.Points)),
		Mode:       domain.ModeVirtualTour,
	}
	for i, s := range bundled.Structures {
		state.Structures[i] = s.Clone()
		state.Structures[i].ResetDynamic()
	}
	copy(state.Points, bundled.Points)
	for i := range state.Points {
		state.Points[i].Visited = false
	}
	return state
}

func (uc *DatasetUseCase) loadStored(ctx context.Context, bundled *domain.Dataset) (*State, error) {
	version := bundled.Version
	state := &State{Version: version, Mode: domain.ModeVirtualTour}

	found, err := uc.getJSON(ctx, KeyStructures, &state.Structures)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: structures missing for version %s", errCorruptState, version)
	}

	found, err = uc.getJSON(ctx, KeyPoints, &state.Points)
	if err != nil && !stderrors.Is(err, errCorruptState) {
		return nil, err
	}
	if err != nil || !found {
		// points carry no state of their own, rebuild them from the structures
		uc.logger.Warn("Landmark points missing, rebuilding from bundle", zap.Error(err))
		state.Points = append([]domain.LandmarkPoint(nil), bundled.Points...)
		syncPointFlags(state)
		uc.markDirty(KeyPoints)
	}

	found, err = uc.getJSON(ctx, KeyStatistics, &state.Statistics)
	if err != nil && !stderrors.Is(err, errCorruptState) {
		return nil, err
	}
	if err != nil || !found {
		uc.logger.Warn("Visit statistics missing, deriving from structures", zap.Error(err))
		state.Statistics = deriveStatistics(state.Structures, domain.VisitStatistics{})
		uc.markDirty(KeyStatistics)
	}

	if _, err := uc.getJSON(ctx, KeyLastVisited, &state.LastVisitedID); err != nil {
		if !stderrors.Is(err, errCorruptState) {
			return nil, err
		}
		uc.logger.Warn("Last visited pointer unreadable, clearing", zap.Error(err))
		state.LastVisitedID = nil
	}
	if state.LastVisitedID != nil {
		if _, ok := state.StructureIndex(*state.LastVisitedID); !ok {
			state.LastVisitedID = nil
		}
	}

	mode, err := uc.getString(ctx, KeyMode)
	if err != nil {
		return nil, err
	}
	if parsed, err := domain.ParseMode(mode); mode != "" && err == nil {
		state.Mode = parsed
	}

	return state, nil
}

// previousState is the dynamic state some earlier session stored.
type previousState struct {
	structures []domain.Structure
	stats      domain.VisitStatistics
	lastID     *int
	mode       string
}

// readPrevious returns errCorruptState when the stored structures are
// missing or undecodable; any other error means the store could not be read.
func (uc *DatasetUseCase) readPrevious(ctx context.Context) (*previousState, error) {
	prev := &previousState{}

	found, err := uc.getJSON(ctx, KeyStructures, &prev.structures)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: structures missing", errCorruptState)
	}

	if _, err := uc.getJSON(ctx, KeyStatistics, &prev.stats); err != nil {
		if !stderrors.Is(err, errCorruptState) {
			return nil, err
		}
		uc.logger.Warn("Previous statistics unreadable", zap.Error(err))
		prev.stats = domain.VisitStatistics{}
	}

	if _, err := uc.getJSON(ctx, KeyLastVisited, &prev.lastID); err != nil {
		if !stderrors.Is(err, errCorruptState) {
			return nil, err
		}
		prev.lastID = nil
	}

	prev.mode, err = uc.getString(ctx, KeyMode)
	if err != nil {
		return nil, err
	}
	return prev, nil
}

// mergePrevious carries dynamic fields of structures that still exist into
// the fresh bundle. Visit orders are renumbered densely so the next order is
// always the visited count. Only a read failure is returned; corrupt stored
// data is skipped.
func (uc *DatasetUseCase) mergePrevious(ctx context.Context, state *State) error {
	prev, err := uc.readPrevious(ctx)
	if err != nil {
		if stderrors.Is(err, errCorruptState) {
			uc.logger.Warn("Previous structures unavailable, dynamic state not carried over", zap.Error(err))
			return nil
		}
		return err
	}

	mergeSession(state, prev)
	if parsed, err := domain.ParseMode(prev.mode); prev.mode != "" && err == nil {
		state.Mode = parsed
	}
	return nil
}

// seed writes the whole state and then the version tag, and verifies the tag
// it wrote is the one stored. When a collection fails the tag stays dirty.
func (uc *DatasetUseCase) seed(ctx context.Context, state *State) error {
	keys := append(append([]string(nil), stateKeys...), KeyDatasetVersion)
	if err := uc.Persist(ctx, state, keys...); err != nil {
		return err
	}

	stored, err := uc.getString(ctx, KeyDatasetVersion)
	if err != nil {
		return nil
	}
	if stored != state.Version {
		return fmt.Errorf("%w: wrote %s, read back %s", errors.ErrVersionMismatch, state.Version, stored)
	}
	return nil
}

func (uc *DatasetUseCase) writeKey(ctx context.Context, state *State, key string) error {
	var value interface{}
	switch key {
	case KeyStructures:
		value = state.Structures
	case KeyPoints:
		value = state.Points
	case KeyStatistics:
		value = state.Statistics
	case KeyLastVisited:
		if state.LastVisitedID == nil {
			return uc.store.Remove(ctx, key)
		}
		value = state.LastVisitedID
	case KeyMode:
		return uc.store.Set(ctx, key, []byte(state.Mode.String()))
	case KeyDatasetVersion:
		return uc.store.Set(ctx, key, []byte(state.Version))
	default:
		return fmt.Errorf("unknown state key %q", key)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return uc.store.Set(ctx, key, data)
}

func (uc *DatasetUseCase) markDirty(key string) {
	uc.mu.Lock()
	uc.dirty[key] = true
	uc.mu.Unlock()
}

func (uc *DatasetUseCase) getString(ctx context.Context, key string) (string, error) {
	data, err := uc.store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (uc *DatasetUseCase) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	data, err := uc.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: unmarshal %s: %v", errCorruptState, key, err)
	}
	return true, nil
}

// deriveStatistics recomputes the visited count from the structures and keeps
// the counters that cannot be derived (days, completed cycles).
func deriveStatistics(structures []domain.Structure, previous domain.VisitStatistics) domain.VisitStatistics {
	stats := previous
	stats.TotalVisitedCount = 0
	for _, s := range structures {
		if s.Visited {
			stats.TotalVisitedCount++
		}
	}
	if stats.TotalVisitedCount == 0 {
		stats.DistinctDayCount = 0
		stats.LastVisitDate = ""
	}
	return stats
}

// mergeSession folds the session's dynamic state into what an earlier session
// stored. Stored visits keep their order and session visits follow them; a
// reset made during the session wins over the stored visits or likes.
func mergeSession(state *State, prev *previousState) {
	session := state.Statistics

	byID := make(map[int]domain.Structure, len(prev.structures))
	storedComplete := len(prev.structures) > 0
	for _, s := range prev.structures {
		byID[s.ID] = s
		if !s.Visited {
			storedComplete = false
		}
	}

	offset := len(prev.structures) + len(state.Structures)
	for i := range state.Structures {
		s := &state.Structures[i]
		if s.Visited && !state.visitsReset {
			s.VisitOrder += offset
		}

		old, ok := byID[s.ID]
		if !ok {
			continue
		}
		if !state.visitsReset {
			if old.Visited {
				s.Visited = true
				s.VisitOrder = old.VisitOrder
			}
			s.Opened = s.Opened || old.Opened
		}
		if !state.likesReset {
			s.Liked = s.Liked || old.Liked
		}
	}
	renumberVisitOrders(state.Structures)

	stats := prev.stats
	switch {
	case state.visitsReset:
		stats.DistinctDayCount = session.DistinctDayCount
		stats.LastVisitDate = session.LastVisitDate
	case session.DistinctDayCount > 0:
		stats.DistinctDayCount += session.DistinctDayCount
		if state.firstVisitOn != "" && state.firstVisitOn == prev.stats.LastVisitDate {
			stats.DistinctDayCount--
		}
		stats.LastVisitDate = session.LastVisitDate
	}
	stats.AllStructuresVisitedCount += session.AllStructuresVisitedCount
	if !state.visitsReset && session.TotalVisitedCount > 0 && session.AllStructuresVisitedCount == 0 &&
		!storedComplete && allStructuresVisited(state.Structures) {
		stats.AllStructuresVisitedCount++
	}
	state.Statistics = deriveStatistics(state.Structures, stats)

	if state.LastVisitedID == nil && !state.visitsReset && prev.lastID != nil {
		if _, ok := state.StructureIndex(*prev.lastID); ok {
			id := *prev.lastID
			state.LastVisitedID = &id
		}
	}

	syncPointFlags(state)

	state.visitsReset = false
	state.likesReset = false
	state.firstVisitOn = ""
}

func allStructuresVisited(structures []domain.Structure) bool {
	if len(structures) == 0 {
		return false
	}
	for _, s := range structures {
		if !s.Visited {
			return false
		}
	}
	return true
}

func renumberVisitOrders(structures []domain.Structure) {
	visited := make([]int, 0, len(structures))
	for i := range structures {
		if structures[i].Visited {
			visited = append(visited, i)
		} else {
			structures[i].VisitOrder = domain.NoVisitOrder
		}
	}
	sort.SliceStable(visited, func(a, b int) bool {
		oa, ob := structures[visited[a]].VisitOrder, structures[visited[b]].VisitOrder
		// visited without an order sorts last
		if oa < 0 {
			return false
		}
		if ob < 0 {
			return true
		}
		return oa < ob
	})
	for order, i := range visited {
		structures[i].VisitOrder = order
	}
}

func syncPointFlags(state *State) {
	visited := make(map[int]bool, len(state.Structures))
	for _, s := range state.Structures {
		visited[s.ID] = s.Visited
	}
	for i := range state.Points {
		if state.Points[i].IsLandmark() {
			state.Points[i].Visited = visited[state.Points[i].StructureID]
		}
	}
}
