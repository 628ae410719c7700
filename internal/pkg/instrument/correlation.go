package instrument

import (
	"context"

	"github.com/google/uuid"
)

// CorrelationHeader carries the correlation id over HTTP and message headers.
const CorrelationHeader = "X-Correlation-ID"

type correlationKey struct{}

// SetCorrelationID returns a child context carrying id.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// GetCorrelationID returns the id stored by SetCorrelationID, or "".
func GetCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// EnsureCorrelationID keeps an existing id or mints a UUIDv7 one.
func EnsureCorrelationID(ctx context.Context, candidate string) (context.Context, string) {
	if candidate == "" {
		candidate = GetCorrelationID(ctx)
	}
	if candidate == "" {
		if id, err := uuid.NewV7(); err == nil {
			candidate = id.String()
		} else {
			candidate = uuid.NewString()
		}
	}
	return SetCorrelationID(ctx, candidate), candidate
}
