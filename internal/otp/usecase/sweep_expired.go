package usecase

import (
	"context"
	"log/slog"
)

// SweepExpired marks pending records past expires_at as EXPIRED. Verification
// expires lazily on its own, so this only keeps the pending index small.
func (s *Usecase) SweepExpired(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "SweepExpired")
	defer span.End()

	n, err := s.repoDB.ExpireStale(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo expire stale otp", "error", err)
		return 0, errStorage(err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "expired stale otp records", "count", n)
	}

	return n, nil
}
