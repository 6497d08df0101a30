package usecase

import (
	"context"
	"time"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/metrics"
	"github.com/landmark-guide/internal/pkg/errors"
	"go.uber.org/zap"
)

// VisitLedger is the only writer of structure, point and statistics state.
// It is not safe for concurrent use; the engine serializes access.
type VisitLedger struct {
	datasets *DatasetUseCase
	state    *State
	clock    func() time.Time
	logger   *zap.Logger
}

// NewVisitLedger создает новый экземпляр VisitLedger
func NewVisitLedger(
	datasets *DatasetUseCase,
	state *State,
	clock func() time.Time,
	logger *zap.Logger,
) *VisitLedger {
	if clock == nil {
		clock = time.Now
	}
	return &VisitLedger{
		datasets: datasets,
		state:    state,
		clock:    clock,
		logger:   logger,
	}
}

// RecordVisit marks the structure visited. The bool result is false when the
// structure had already been visited in the current cycle.
func (l *VisitLedger) RecordVisit(ctx context.Context, id int, mode domain.Mode) (*domain.Structure, bool, error) {
	if id == domain.NotALandmark {
		return nil, false, errors.ErrNotALandmark
	}
	if mode != domain.ModeAdventure {
		return nil, false, errors.ErrVisitNotAllowed
	}

	idx, ok := l.state.StructureIndex(id)
	if !ok {
		return nil, false, errors.ErrStructureNotFound.WithDetails(map[string]interface{}{"structure_id": id})
	}

	s := &l.state.Structures[idx]
	if s.Visited {
		return nil, false, nil
	}

	stats := &l.state.Statistics
	s.Visited = true
	s.VisitOrder = stats.TotalVisitedCount
	stats.TotalVisitedCount++

	lastID := id
	l.state.LastVisitedID = &lastID

	today := l.clock().Format(domain.DateLayout)
	if l.state.firstVisitOn == "" {
		l.state.firstVisitOn = today
	}
	if stats.LastVisitDate != today {
		stats.DistinctDayCount++
		stats.LastVisitDate = today
	}

	l.setPointFlags(id, true)

	if l.allVisited() {
		stats.AllStructuresVisitedCount++
		l.logger.Info("All structures visited",
			zap.Int("cycles", stats.AllStructuresVisitedCount))
	}

	metrics.VisitsRecordedTotal.Inc()
	l.logger.Info("Visit recorded",
		zap.Int("structure_id", id),
		zap.Int("visit_order", s.VisitOrder),
		zap.Int("total_visited", stats.TotalVisitedCount))

	l.persist(ctx, KeyStructures, KeyPoints, KeyStatistics, KeyLastVisited)

	visited := s.Clone()
	return &visited, true, nil
}

func (l *VisitLedger) MarkOpened(ctx context.Context, id int) (*domain.Structure, error) {
	idx, ok := l.state.StructureIndex(id)
	if !ok {
		return nil, errors.ErrStructureNotFound.WithDetails(map[string]interface{}{"structure_id": id})
	}

	s := &l.state.Structures[idx]
	if !s.Opened {
		s.Opened = true
		l.persist(ctx, KeyStructures)
	}

	c := s.Clone()
	return &c, nil
}

func (l *VisitLedger) ToggleLiked(ctx context.Context, id int) (*domain.Structure, error) {
	idx, ok := l.state.StructureIndex(id)
	if !ok {
		return nil, errors.ErrStructureNotFound.WithDetails(map[string]interface{}{"structure_id": id})
	}

	s := &l.state.Structures[idx]
	s.Liked = !s.Liked
	l.persist(ctx, KeyStructures)

	c := s.Clone()
	return &c, nil
}

// ResetVisits starts a new visit cycle. Likes and the completed cycle counter
// are kept.
func (l *VisitLedger) ResetVisits(ctx context.Context) {
	for i := range l.state.Structures {
		s := &l.state.Structures[i]
		s.Visited = false
		s.Opened = false
		s.VisitOrder = domain.NoVisitOrder
	}
	for i := range l.state.Points {
		if l.state.Points[i].IsLandmark() {
			l.state.Points[i].Visited = false
		}
	}
	l.state.Statistics.ResetVisits()
	l.state.LastVisitedID = nil
	l.state.visitsReset = true
	l.state.firstVisitOn = ""

	l.logger.Info("Visits reset",
		zap.Int("completed_cycles", l.state.Statistics.AllStructuresVisitedCount))

	l.persist(ctx, KeyStructures, KeyPoints, KeyStatistics, KeyLastVisited)
}

func (l *VisitLedger) ResetLikes(ctx context.Context) {
	for i := range l.state.Structures {
		l.state.Structures[i].Liked = false
	}
	l.state.likesReset = true
	l.persist(ctx, KeyStructures)
}

// DismissLastVisited clears the "just visited" pointer.
func (l *VisitLedger) DismissLastVisited(ctx context.Context) {
	if l.state.LastVisitedID == nil {
		return
	}
	l.state.LastVisitedID = nil
	l.persist(ctx, KeyLastVisited)
}

// LastVisited returns a copy of the structure behind the "just visited"
// pointer.
func (l *VisitLedger) LastVisited() *domain.Structure {
	if l.state.LastVisitedID == nil {
		return nil
	}
	idx, ok := l.state.StructureIndex(*l.state.LastVisitedID)
	if !ok {
		return nil
	}
	c := l.state.Structures[idx].Clone()
	return &c
}

// SetMode records the mode so it survives restarts.
func (l *VisitLedger) SetMode(ctx context.Context, mode domain.Mode) {
	if l.state.Mode == mode {
		return
	}
	l.state.Mode = mode
	l.persist(ctx, KeyMode)
}

func (l *VisitLedger) Flush(ctx context.Context) error {
	return l.datasets.Flush(ctx, l.state)
}

func (l *VisitLedger) setPointFlags(id int, visited bool) {
	for i := range l.state.Points {
		if l.state.Points[i].StructureID == id {
			l.state.Points[i].Visited = visited
		}
	}
}

func (l *VisitLedger) allVisited() bool {
	if len(l.state.Structures) == 0 {
		return false
	}
	for _, s := range l.state.Structures {
		if !s.Visited {
			return false
		}
	}
	return true
}

// persist never fails the caller: in-memory state stays authoritative and the
// dataset layer keeps failed keys dirty for the next write.
func (l *VisitLedger) persist(ctx context.Context, keys ...string) {
	if err := l.datasets.Persist(ctx, l.state, keys...); err != nil {
		l.logger.Warn("State kept in memory only", zap.Error(err))
	}
}
