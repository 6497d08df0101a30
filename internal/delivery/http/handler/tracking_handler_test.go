package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/landmark-guide/internal/delivery/http/handler"
	"github.com/landmark-guide/internal/domain"
	"github.com/landmark-guide/internal/infrastructure/device"
	"github.com/landmark-guide/internal/pkg/errors"
	"github.com/landmark-guide/internal/usecase"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func setupTrackingApp(engine *MockEngine, relay *MockRelay) *fiber.App {
	h := handler.NewTrackingHandler(engine, relay, zap.NewNop())
	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/state", h.GetState)
	app.Get("/state/stream", h.StreamState)
	app.Post("/fix", h.PostFix)
	app.Post("/mode", h.SetMode)
	app.Get("/recommend-mode", h.RecommendMode)
	app.Post("/permission", h.AnswerPermission)
	app.Post("/permission/revoke", h.RevokePermission)
	app.Get("/acquisition", h.GetAcquisition)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestTrackingHandler_PostFix(t *testing.T) {
	engine := &MockEngine{}
	relay := &MockRelay{}
	app := setupTrackingApp(engine, relay)

	coord := domain.Coordinate{Lat: 35.31, Lon: -120.65}
	id := 4
	relay.On("PushFix", coord).Once()
	engine.On("HandleFix", mock.Anything, usecase.FixInput{Coordinate: coord, Background: true}).
		Return(domain.FixResult{Accepted: true, NearestID: &id, ProximityTier: domain.TierInside}, nil)

	status, env := doRequest(t, app, http.MethodPost, "/fix", `{"lat":35.31,"lon":-120.65,"background":true}`)

	assert.Equal(t, http.StatusOK, status)
	var result domain.FixResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Accepted)
	require.NotNil(t, result.NearestID)
	assert.Equal(t, 4, *result.NearestID)
	relay.AssertExpectations(t)
}

func TestTrackingHandler_PostFixValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing lon", `{"lat":35.31}`},
		{"latitude out of range", `{"lat":91,"lon":0}`},
		{"malformed body", `{"lat":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &MockEngine{}
			app := setupTrackingApp(engine, &MockRelay{})

			status, env := doRequest(t, app, http.MethodPost, "/fix", tt.body)

			assert.Equal(t, http.StatusBadRequest, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, errors.ErrInvalidRequest.Code, env.Error.Code)
			engine.AssertNotCalled(t, "HandleFix", mock.Anything, mock.Anything)
		})
	}
}

func TestTrackingHandler_ZeroCoordinateIsValid(t *testing.T) {
	engine := &MockEngine{}
	relay := &MockRelay{}
	app := setupTrackingApp(engine, relay)

	relay.On("PushFix", domain.Coordinate{}).Once()
	engine.On("HandleFix", mock.Anything, usecase.FixInput{}).
		Return(domain.FixResult{DropReason: domain.DropInactive}, nil)

	status, _ := doRequest(t, app, http.MethodPost, "/fix", `{"lat":0,"lon":0}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestTrackingHandler_SetMode(t *testing.T) {
	engine := &MockEngine{}
	app := setupTrackingApp(engine, &MockRelay{})

	engine.On("SetMode", mock.Anything, domain.ModeAdventure).
		Return(domain.Snapshot{Mode: domain.ModeAdventure, TrackingState: domain.TrackingForegroundOnly})

	status, env := doRequest(t, app, http.MethodPost, "/mode", `{"mode":"adventure"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"mode":"adventure"`)

	status, env = doRequest(t, app, http.MethodPost, "/mode", `{"mode":"hiking"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "mode", env.Error.Details["Mode"])
}

func TestTrackingHandler_RecommendMode(t *testing.T) {
	engine := &MockEngine{}
	app := setupTrackingApp(engine, &MockRelay{})

	engine.On("RecommendMode", domain.Coordinate{Lat: 35.31, Lon: -120.65}).Return(domain.ModeAdventure, nil)

	status, env := doRequest(t, app, http.MethodGet, "/recommend-mode?lat=35.31&lon=-120.65", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"mode":"adventure"}`, string(env.Data))

	status, _ = doRequest(t, app, http.MethodGet, "/recommend-mode?lat=35.31", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTrackingHandler_AnswerPermission(t *testing.T) {
	t.Run("pending prompt gets the answer", func(t *testing.T) {
		engine := &MockEngine{}
		relay := &MockRelay{}
		app := setupTrackingApp(engine, relay)

		relay.On("Answer", domain.PermissionForeground, true).Return(true)
		engine.On("Snapshot").Return(domain.Snapshot{Sequence: 3})

		status, env := doRequest(t, app, http.MethodPost, "/permission", `{"kind":"foreground","granted":true}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"delivered_to_prompt":true`)
		engine.AssertNotCalled(t, "PermissionResult", mock.Anything, mock.Anything)
	})

	t.Run("no prompt goes straight to the engine", func(t *testing.T) {
		engine := &MockEngine{}
		relay := &MockRelay{}
		app := setupTrackingApp(engine, relay)

		relay.On("Answer", domain.PermissionBackground, false).Return(false)
		engine.On("PermissionResult", domain.PermissionBackground, false).
			Return(domain.Snapshot{TrackingState: domain.TrackingForegroundOnly})

		status, env := doRequest(t, app, http.MethodPost, "/permission", `{"kind":"always","granted":false}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(env.Data), `"delivered_to_prompt":false`)
		engine.AssertExpectations(t)
	})

	t.Run("granted is required", func(t *testing.T) {
		app := setupTrackingApp(&MockEngine{}, &MockRelay{})
		status, _ := doRequest(t, app, http.MethodPost, "/permission", `{"kind":"foreground"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestTrackingHandler_RevokePermission(t *testing.T) {
	engine := &MockEngine{}
	app := setupTrackingApp(engine, &MockRelay{})

	engine.On("RevokePermission", domain.PermissionBackground).
		Return(domain.Snapshot{TrackingState: domain.TrackingForegroundOnly})

	status, _ := doRequest(t, app, http.MethodPost, "/permission/revoke", `{"kind":"background"}`)
	assert.Equal(t, http.StatusOK, status)
	engine.AssertExpectations(t)
}

func TestTrackingHandler_GetAcquisition(t *testing.T) {
	relay := &MockRelay{}
	app := setupTrackingApp(&MockEngine{}, relay)

	relay.On("Acquisition").Return(device.AcquisitionStatus{
		State:          domain.TrackingBackground,
		PendingPrompts: []domain.PermissionKind{domain.PermissionBackground},
	})

	status, env := doRequest(t, app, http.MethodGet, "/acquisition", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"pending_prompts":["background"]`)
}

func TestTrackingHandler_Health(t *testing.T) {
	engine := &MockEngine{}
	app := setupTrackingApp(engine, &MockRelay{})
	engine.On("Snapshot").Return(domain.Snapshot{DatasetVersion: "2024.05", TrackingState: domain.TrackingInactive})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "2024.05", body["dataset_version"])
}

func TestTrackingHandler_StreamState(t *testing.T) {
	engine := &MockEngine{}
	app := setupTrackingApp(engine, &MockRelay{})

	snapshots := make(chan domain.Snapshot, 2)
	snapshots <- domain.Snapshot{Sequence: 1}
	snapshots <- domain.Snapshot{Sequence: 2}
	close(snapshots)

	var unsubscribed atomic.Bool
	engine.On("Subscribe", 1).Return((<-chan domain.Snapshot)(snapshots), func() { unsubscribed.Store(true) })

	req := httptest.NewRequest(http.MethodGet, "/state/stream", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(raw), "id: 1\ndata: ")
	assert.Contains(t, string(raw), "id: 2\ndata: ")
	assert.Eventually(t, unsubscribed.Load, time.Second, 5*time.Millisecond)
}
