package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/usecase"
)

// MockDatasetProvider is a mock of DatasetProvider
type MockDatasetProvider struct {
	mock.Mock
}

func (m *MockDatasetProvider) Load(ctx context.Context) (*domain.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

// MockAnalyticsRepository is a mock of AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) SendVisits(ctx context.Context, entries []domain.VisitLog) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// MockEventPublisher is a mock of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishVisit(ctx context.Context, event *domain.VisitRecordedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishTrackingChange(ctx context.Context, event *domain.TrackingChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// fakeStore is a map-backed KVStore whose writes can be made to fail.
type fakeStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failSet bool
	failGet bool
	sets    []string
	// readBack, when set, is what Get returns for the dataset version
	readBack string
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, fmt.Errorf("storage unavailable")
	}
	if s.readBack != "" && key == usecase.KeyDatasetVersion {
		return []byte(s.readBack), nil
	}
	v, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return fmt.Errorf("storage unavailable")
	}
	s.data[key] = append([]byte(nil), value...)
	s.sets = append(s.sets, key)
	return nil
}

func (s *fakeStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet {
		return fmt.Errorf("storage unavailable")
	}
	delete(s.data, key)
	return nil
}

func (s *fakeStore) setFailing(fail bool) {
	s.mu.Lock()
	s.failSet = fail
	s.mu.Unlock()
}

func (s *fakeStore) setGetFailing(fail bool) {
	s.mu.Lock()
	s.failGet = fail
	s.mu.Unlock()
}

func (s *fakeStore) raw(key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

func (s *fakeStore) writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sets...)
}

// fakeLocationProvider answers permission prompts from a preset table, or
// blocks until the context ends when no answer is set.
type fakeLocationProvider struct {
	mu          sync.Mutex
	answers     map[domain.PermissionKind]bool
	prompts     map[domain.PermissionKind]int
	acquisition []domain.TrackingState
	fix         *domain.Coordinate
}

func newFakeLocationProvider() *fakeLocationProvider {
	return &fakeLocationProvider{
		answers: make(map[domain.PermissionKind]bool),
		prompts: make(map[domain.PermissionKind]int),
	}
}

func (p *fakeLocationProvider) CurrentFix(ctx context.Context) (*domain.Coordinate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fix == nil {
		return nil, nil
	}
	c := *p.fix
	return &c, nil
}

func (p *fakeLocationProvider) RequestPermission(ctx context.Context, kind domain.PermissionKind) (bool, error) {
	p.mu.Lock()
	p.prompts[kind]++
	granted, ok := p.answers[kind]
	p.mu.Unlock()

	if ok {
		return granted, nil
	}
	<-ctx.Done()
	return false, ctx.Err()
}

func (p *fakeLocationProvider) SetAcquisition(ctx context.Context, state domain.TrackingState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.acquisition = append(p.acquisition, state)
	return nil
}

func (p *fakeLocationProvider) answer(kind domain.PermissionKind, granted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.answers[kind] = granted
}

func (p *fakeLocationProvider) promptCount(kind domain.PermissionKind) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prompts[kind]
}

func (p *fakeLocationProvider) lastAcquisition() (domain.TrackingState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.acquisition) == 0 {
		return domain.TrackingInactive, false
	}
	return p.acquisition[len(p.acquisition)-1], true
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 10, 9, 0, 0, 0, time.Local)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Region (35.0,-120.0)-(35.1,-120.1); structures 1..3 each own one point
// inside it, plus one trail marker.
func testRegion() domain.Region {
	return domain.Region{
		BottomLeft: domain.Coordinate{Lat: 35.0, Lon: -120.0},
		TopRight:   domain.Coordinate{Lat: 35.1, Lon: -120.1},
		Center:     domain.Coordinate{Lat: 35.05, Lon: -120.05},
	}
}

var (
	point1 = domain.Coordinate{Lat: 35.01, Lon: -120.01}
	point2 = domain.Coordinate{Lat: 35.05, Lon: -120.05}
	point3 = domain.Coordinate{Lat: 35.09, Lon: -120.09}
	marker = domain.Coordinate{Lat: 35.03, Lon: -120.07}
)

func testDataset(version string) *domain.Dataset {
	return &domain.Dataset{
		Version: version,
		Structures: []domain.Structure{
			{ID: 1, Name: "Shell House", VisitOrder: domain.NoVisitOrder},
			{ID: 2, Name: "Bridge", VisitOrder: domain.NoVisitOrder},
			{ID: 3, Name: "Tower", VisitOrder: domain.NoVisitOrder},
		},
		Points: []domain.LandmarkPoint{
			{Coordinate: point1, StructureID: 1},
			{Coordinate: point2, StructureID: 2},
			{Coordinate: point3, StructureID: 3},
			{Coordinate: marker, StructureID: domain.NotALandmark},
		},
	}
}
