package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
)

type sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// RegisterSweepJob runs SweepExpired every modules.otp.sweep_interval_seconds.
// A zero interval leaves expiry purely lazy.
func RegisterSweepJob(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc sweeper) {
	interval := cfg.GetSecond("modules.otp.sweep_interval_seconds")
	if interval <= 0 {
		return
	}

	routine.Go(ctx, "otp_sweep_expired", func(ctx context.Context) error {
		slog.InfoContext(ctx, "Running job for sweeping expired otp", "interval", interval.String())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if _, err := uc.SweepExpired(ctx); err != nil {
					slog.ErrorContext(ctx, "failed to sweep expired otp", "error", err)
				}
			}
		}
	})
}
