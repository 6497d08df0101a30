package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/landmark-guide/internal/usecase"
)

func TestFixGate_DropsInsideInterval(t *testing.T) {
	gate := usecase.NewFixGate(time.Second, 30*time.Second)
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, gate.Allow(start, false))
	assert.False(t, gate.Allow(start.Add(300*time.Millisecond), false))
	assert.False(t, gate.Allow(start.Add(999*time.Millisecond), false))
	// dropped fixes do not move the window
	assert.True(t, gate.Allow(start.Add(time.Second), false))
}

func TestFixGate_BackgroundInterval(t *testing.T) {
	gate := usecase.NewFixGate(time.Second, 30*time.Second)
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, gate.Allow(start, true))
	assert.False(t, gate.Allow(start.Add(10*time.Second), true))
	assert.True(t, gate.Allow(start.Add(30*time.Second), true))
}

func TestFixGate_Reset(t *testing.T) {
	gate := usecase.NewFixGate(time.Second, 30*time.Second)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, gate.Allow(now, false))
	gate.Reset()
	assert.True(t, gate.Allow(now, false))
}
