package clock_test

import (
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/stretchr/testify/assert"
)

func TestTimeClocker_NowIsUTC(t *testing.T) {
	now := clock.New().Now()

	assert.Equal(t, time.UTC, now.Location())
	assert.WithinDuration(t, time.Now(), now, time.Second)
}

func TestMock_SetAndAdvance(t *testing.T) {
	// Arrange
	t0 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	m := clock.NewMock(t0)

	// Act
	m.Advance(5 * time.Minute)

	// Assert
	assert.Equal(t, t0.Add(5*time.Minute), m.Now())

	m.Set(t0)
	assert.Equal(t, t0, m.Now())
}
