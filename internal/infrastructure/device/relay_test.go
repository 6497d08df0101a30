package device

import (
	"context"
	"testing"
	"time"

	"github.com/landmark-guide/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitPending(t *testing.T, r *Relay, kind domain.PermissionKind) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, k := range r.Acquisition().PendingPrompts {
			if k == kind {
				return true
			}
		}
		return false
	}, time.Second, 2*time.Millisecond)
}

func TestRelay_PermissionAnswered(t *testing.T) {
	r := NewRelay(time.Minute, zap.NewNop())

	result := make(chan bool, 1)
	go func() {
		granted, err := r.RequestPermission(context.Background(), domain.PermissionForeground)
		assert.NoError(t, err)
		result <- granted
	}()

	waitPending(t, r, domain.PermissionForeground)
	assert.False(t, r.Answer(domain.PermissionBackground, true), "no background prompt is waiting")
	assert.True(t, r.Answer(domain.PermissionForeground, true))

	select {
	case granted := <-result:
		assert.True(t, granted)
	case <-time.After(time.Second):
		t.Fatal("RequestPermission did not return")
	}
	assert.Empty(t, r.Acquisition().PendingPrompts)
}

func TestRelay_PermissionTimeoutDenies(t *testing.T) {
	r := NewRelay(20*time.Millisecond, zap.NewNop())

	granted, err := r.RequestPermission(context.Background(), domain.PermissionBackground)

	require.NoError(t, err)
	assert.False(t, granted)
	assert.False(t, r.Answer(domain.PermissionBackground, true))
}

func TestRelay_PermissionCancelled(t *testing.T) {
	r := NewRelay(time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.RequestPermission(ctx, domain.PermissionForeground)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelay_FixAndAcquisition(t *testing.T) {
	r := NewRelay(time.Minute, zap.NewNop())
	ctx := context.Background()

	fix, err := r.CurrentFix(ctx)
	require.NoError(t, err)
	assert.Nil(t, fix)

	r.PushFix(domain.Coordinate{Lat: 35.31, Lon: -120.65})
	fix, err = r.CurrentFix(ctx)
	require.NoError(t, err)
	require.NotNil(t, fix)
	assert.Equal(t, 35.31, fix.Lat)

	assert.Equal(t, domain.TrackingInactive, r.Acquisition().State)
	require.NoError(t, r.SetAcquisition(ctx, domain.TrackingBackground))
	assert.Equal(t, domain.TrackingBackground, r.Acquisition().State)
}

func TestRelay_AutoGrant(t *testing.T) {
	r := NewRelay(time.Minute, zap.NewNop())
	r.SetAutoGrant(true)

	granted, err := r.RequestPermission(context.Background(), domain.PermissionBackground)

	require.NoError(t, err)
	assert.True(t, granted)
	assert.Empty(t, r.Acquisition().PendingPrompts)
}
