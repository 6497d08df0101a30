package handler_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/infrastructure/device"
	"github.com/landmark-guide/internal/usecase"
)

type MockEngine struct {
	mock.Mock
}

func (m *MockEngine) Snapshot() domain.Snapshot {
	return m.Called().Get(0).(domain.Snapshot)
}

func (m *MockEngine) Subscribe(buffer int) (<-chan domain.Snapshot, func()) {
	args := m.Called(buffer)
	return args.Get(0).(<-chan domain.Snapshot), args.Get(1).(func())
}

func (m *MockEngine) HandleFix(ctx context.Context, in usecase.FixInput) (domain.FixResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.FixResult), args.Error(1)
}

func (m *MockEngine) SetMode(ctx context.Context, mode domain.Mode) domain.Snapshot {
	return m.Called(ctx, mode).Get(0).(domain.Snapshot)
}

func (m *MockEngine) RecommendMode(coord domain.Coordinate) (domain.Mode, error) {
	args := m.Called(coord)
	return args.Get(0).(domain.Mode), args.Error(1)
}

func (m *MockEngine) PermissionResult(kind domain.PermissionKind, granted bool) domain.Snapshot {
	return m.Called(kind, granted).Get(0).(domain.Snapshot)
}

func (m *MockEngine) RevokePermission(kind domain.PermissionKind) domain.Snapshot {
	return m.Called(kind).Get(0).(domain.Snapshot)
}

func (m *MockEngine) TrackingState() domain.TrackingState {
	return m.Called().Get(0).(domain.TrackingState)
}

func (m *MockEngine) Structures() []domain.Structure {
	return m.Called().Get(0).([]domain.Structure)
}

func (m *MockEngine) Structure(id int) (domain.Structure, error) {
	args := m.Called(id)
	return args.Get(0).(domain.Structure), args.Error(1)
}

func (m *MockEngine) Statistics() domain.VisitStatistics {
	return m.Called().Get(0).(domain.VisitStatistics)
}

func (m *MockEngine) MarkOpened(ctx context.Context, id int) (*domain.Structure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Structure), args.Error(1)
}

func (m *MockEngine) ToggleLiked(ctx context.Context, id int) (*domain.Structure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Structure), args.Error(1)
}

func (m *MockEngine) ResetVisits(ctx context.Context) domain.Snapshot {
	return m.Called(ctx).Get(0).(domain.Snapshot)
}

func (m *MockEngine) ResetLikes(ctx context.Context) domain.Snapshot {
	return m.Called(ctx).Get(0).(domain.Snapshot)
}

func (m *MockEngine) DismissLastVisited(ctx context.Context) domain.Snapshot {
	return m.Called(ctx).Get(0).(domain.Snapshot)
}

type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) PushFix(c domain.Coordinate) {
	m.Called(c)
}

func (m *MockRelay) Answer(kind domain.PermissionKind, granted bool) bool {
	return m.Called(kind, granted).Bool(0)
}

func (m *MockRelay) Acquisition() device.AcquisitionStatus {
	return m.Called().Get(0).(device.AcquisitionStatus)
}
