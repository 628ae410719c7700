// Package idempotency guards side effects, such as sending an SMS, against
// duplicate message deliveries using a Redis backed state machine per key.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("idempotency: operation already in progress")
	ErrAlreadyCompleted  = errors.New("idempotency: operation already completed")
	ErrAlreadyFailed     = errors.New("idempotency: operation already failed")
	ErrInvalidState      = errors.New("idempotency: invalid state")
)

type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

func (s State) String() string { return string(s) }

// Idempotency runs fn at most once per key while the key's state lives.
type Idempotency interface {
	Acquire(ctx context.Context, key string, lock time.Duration) (State, error)
	MarkCompleted(ctx context.Context, key string, ttl time.Duration) error
	MarkFailed(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLock     = time.Minute
	defaultStateTTL = 24 * time.Hour
	keyPrefix       = "idempotency:"
)

type execOptions struct {
	lock     time.Duration
	stateTTL time.Duration
}

type Option func(*execOptions)

// WithLockDuration bounds how long an in-progress claim survives a crashed worker.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lock = d }
}

// WithStateTTL sets how long completed or failed outcomes are remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

type StateTracker struct {
	client redis.UniversalClient
}

func New(client redis.UniversalClient) *StateTracker {
	return &StateTracker{client: client}
}

// Acquire claims key with SET NX GET, so the claim and the read of the
// previous state are one atomic step. StateNone means the caller owns the key.
func (s *StateTracker) Acquire(ctx context.Context, key string, lock time.Duration) (State, error) {
	prev, err := s.client.SetArgs(ctx, keyPrefix+key, StateInProgress.String(), redis.SetArgs{
		Mode: "NX",
		TTL:  lock,
		Get:  true,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return StateNone, nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency: acquire %q: %w", key, err)
	}

	switch State(prev) {
	case StateInProgress, StateCompleted, StateFailed:
		return State(prev), nil
	default:
		return "", ErrInvalidState
	}
}

func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+key, StateCompleted.String(), ttl).Err()
}

func (s *StateTracker) MarkFailed(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+key, StateFailed.String(), ttl).Err()
}

// Release forgets key so the next Acquire owns it again.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefix+key).Err()
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }

func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks an fn error as transient: Exec releases the key instead of
// recording a failure, so a redelivered message runs fn again.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}

// Exec claims key, runs fn and records the outcome. A key that is already
// claimed returns the matching ErrAlready* without running fn. Errors wrapped
// with Retryable leave the key unclaimed.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lock: defaultLock, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}
	if o.lock <= 0 {
		o.lock = defaultLock
	}
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, o.lock)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	}

	if err := fn(ctx); err != nil {
		if IsRetryable(err) {
			return errors.Join(err, s.Release(context.WithoutCancel(ctx), key))
		}
		return errors.Join(err, s.MarkFailed(context.WithoutCancel(ctx), key, o.stateTTL))
	}

	return s.MarkCompleted(context.WithoutCancel(ctx), key, o.stateTTL)
}
