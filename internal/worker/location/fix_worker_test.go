package location_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/usecase"
	"github.com/landmark-guide/internal/worker"
	"github.com/landmark-guide/internal/worker/location"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessage(ctx context.Context, stream, group, messageID string) error {
	args := m.Called(ctx, stream, group, messageID)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockFixHandler is a mock of the engine fix entry point
type MockFixHandler struct {
	mock.Mock
}

func (m *MockFixHandler) HandleFix(ctx context.Context, in usecase.FixInput) (domain.FixResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.FixResult), args.Error(1)
}

type recorder struct {
	mu    sync.Mutex
	fixes []domain.Coordinate
}

func (r *recorder) PushFix(c domain.Coordinate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fixes = append(r.fixes, c)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fixes)
}

func startWorker(t *testing.T, w *location.FixWorker) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(ctx)
	}()
	return cancel, done
}

func TestFixWorker_Name(t *testing.T) {
	w := location.NewFixWorker(&MockStreamRepository{}, &MockFixHandler{}, nil, uuid.Nil, "test-group", zap.NewNop())
	assert.Equal(t, "location-fix", w.Name())
}

func TestFixWorker_Stop(t *testing.T) {
	w := location.NewFixWorker(&MockStreamRepository{}, &MockFixHandler{}, nil, uuid.Nil, "test-group", zap.NewNop())

	// Stop should not error even if not started
	assert.NoError(t, w.Stop())
	// Calling stop multiple times should be safe
	assert.NoError(t, w.Stop())
	assert.True(t, w.IsStopped())
}

func TestFixWorker_ProcessesAndAcks(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockHandler := &MockFixHandler{}
	rec := &recorder{}

	messages := make(chan domain.StreamMessage, 3)
	messages <- domain.StreamMessage{ID: "1-0", Data: `{"user_id":"7f1c1c4e-2b7a-4d1a-9b55-3c9f0a3b8d21","latitude":35.31,"longitude":-120.65,"background":true}`}
	messages <- domain.StreamMessage{ID: "2-0", Data: `{not json`}
	messages <- domain.StreamMessage{ID: "3-0", Data: `{"latitude":35.31}`}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamLocationFix, "test-group").Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamLocationFix, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	acked := make(chan string, 3)
	mockStream.On("AckMessage", mock.Anything, domain.StreamLocationFix, "test-group", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { acked <- args.String(3) }).
		Return(nil)

	structureID := 4
	mockHandler.On("HandleFix", mock.Anything, usecase.FixInput{
		Coordinate: domain.Coordinate{Lat: 35.31, Lon: -120.65},
		Background: true,
	}).Return(domain.FixResult{Accepted: true, Visited: &domain.Structure{ID: structureID}}, nil).Once()

	w := location.NewFixWorker(mockStream, mockHandler, rec, uuid.Nil, "test-group", zap.NewNop())
	cancel, done := startWorker(t, w)
	defer cancel()

	var ids []string
	for i := 0; i < 3; i++ {
		select {
		case id := <-acked:
			ids = append(ids, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d messages acked", len(ids))
		}
	}
	assert.Equal(t, []string{"1-0", "2-0", "3-0"}, ids, "malformed messages are acked and skipped")
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, worker.Stats{Processed: 1, Failed: 2}, w.Stats())

	require.NoError(t, w.Stop())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	mockHandler.AssertExpectations(t)
}

func TestFixWorker_EngineErrorStillAcks(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockHandler := &MockFixHandler{}

	messages := make(chan domain.StreamMessage, 1)
	messages <- domain.StreamMessage{ID: "9-0", Data: `{"latitude":135,"longitude":0}`}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamLocationFix, "test-group").Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamLocationFix, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	acked := make(chan string, 1)
	mockStream.On("AckMessage", mock.Anything, domain.StreamLocationFix, "test-group", "9-0").
		Run(func(args mock.Arguments) { acked <- args.String(3) }).
		Return(nil)

	mockHandler.On("HandleFix", mock.Anything, mock.Anything).
		Return(domain.FixResult{DropReason: domain.DropInvalid}, errors.New("invalid coordinates"))

	w := location.NewFixWorker(mockStream, mockHandler, nil, uuid.Nil, "test-group", zap.NewNop())
	cancel, _ := startWorker(t, w)
	defer cancel()

	select {
	case id := <-acked:
		assert.Equal(t, "9-0", id)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not acked")
	}
}

func TestFixWorker_ContextCancellation(t *testing.T) {
	mockStream := &MockStreamRepository{}
	messages := make(chan domain.StreamMessage)

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamLocationFix, "test-group").Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamLocationFix, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	w := location.NewFixWorker(mockStream, &MockFixHandler{}, nil, uuid.Nil, "test-group", zap.NewNop())
	cancel, done := startWorker(t, w)

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Worker did not stop on context cancellation")
	}
}

func TestFixWorker_ConsumerGroupError(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamLocationFix, "test-group").
		Return(errors.New("redis down"))

	w := location.NewFixWorker(mockStream, &MockFixHandler{}, nil, uuid.Nil, "test-group", zap.NewNop())
	err := w.Start(context.Background())
	assert.Error(t, err)
}

func TestFixWorker_SkipsFixesForAnotherUser(t *testing.T) {
	mockStream := &MockStreamRepository{}
	mockHandler := &MockFixHandler{}
	owner := uuid.MustParse("7f1c1c4e-2b7a-4d1a-9b55-3c9f0a3b8d21")

	messages := make(chan domain.StreamMessage, 3)
	messages <- domain.StreamMessage{ID: "1-0", Data: `{"user_id":"0b9d8f3e-1111-4c2a-8d7e-5a6b7c8d9e0f","latitude":35.31,"longitude":-120.65}`}
	messages <- domain.StreamMessage{ID: "2-0", Data: `{"user_id":"7f1c1c4e-2b7a-4d1a-9b55-3c9f0a3b8d21","latitude":35.31,"longitude":-120.65}`}
	messages <- domain.StreamMessage{ID: "3-0", Data: `{"latitude":35.31,"longitude":-120.65}`}

	mockStream.On("CreateConsumerGroup", mock.Anything, domain.StreamLocationFix, "test-group").Return(nil)
	mockStream.On("ConsumeStream", mock.Anything, domain.StreamLocationFix, "test-group", mock.AnythingOfType("string")).
		Return((<-chan domain.StreamMessage)(messages), nil)

	acked := make(chan string, 3)
	mockStream.On("AckMessage", mock.Anything, domain.StreamLocationFix, "test-group", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { acked <- args.String(3) }).
		Return(nil)

	mockHandler.On("HandleFix", mock.Anything, usecase.FixInput{
		Coordinate: domain.Coordinate{Lat: 35.31, Lon: -120.65},
	}).Return(domain.FixResult{Accepted: true}, nil).Twice()

	w := location.NewFixWorker(mockStream, mockHandler, nil, owner, "test-group", zap.NewNop())
	cancel, _ := startWorker(t, w)
	defer cancel()

	var ids []string
	for i := 0; i < 3; i++ {
		select {
		case id := <-acked:
			ids = append(ids, id)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d messages acked", len(ids))
		}
	}
	assert.Equal(t, []string{"1-0", "2-0", "3-0"}, ids)
	assert.Equal(t, worker.Stats{Processed: 2, Failed: 1}, w.Stats())
	mockHandler.AssertExpectations(t)
}
