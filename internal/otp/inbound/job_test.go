package inbound_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/inbound"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSweeper struct{ runs atomic.Int32 }

func (c *countingSweeper) SweepExpired(context.Context) (int64, error) {
	c.runs.Add(1)
	return 0, nil
}

func TestRegisterSweepJob(t *testing.T) {
	t.Run("disabled when interval is zero", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("modules: {otp: {sweep_interval_seconds: 0}}"))
		require.NoError(t, err)

		routine := goroutine.NewManager(2)
		sw := &countingSweeper{}
		inbound.RegisterSweepJob(context.Background(), cfg, routine, sw)

		require.NoError(t, routine.Wait())
		assert.Zero(t, sw.runs.Load())
	})

	t.Run("ticks until cancelled", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("modules: {otp: {sweep_interval_seconds: 1}}"))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		routine := goroutine.NewManager(2)
		sw := &countingSweeper{}
		inbound.RegisterSweepJob(ctx, cfg, routine, sw)

		assert.Eventually(t, func() bool { return sw.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
		cancel()
		assert.NoError(t, routine.Wait())
	})
}
