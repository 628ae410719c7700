// Package goroutine runs bounded background tasks that outlive a request,
// such as the OTP sweep loop and delivery publishes.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/otpgate/internal/pkg/stacktrace"
)

// DefaultPerCPU is multiplied by NumCPU when NewManager gets a non-positive limit.
const DefaultPerCPU int = 100

// ErrPanic is recorded when a task panics.
var ErrPanic = errors.New("goroutine: task panicked")

// Manager runs named tasks with a concurrency limit and collects their errors.
type Manager struct {
	wg   sync.WaitGroup
	sema chan struct{}

	mu     sync.Mutex
	errs   []error
	closed bool
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultPerCPU
	}

	return &Manager{sema: make(chan struct{}, limit)}
}

// Go starts f unless the manager is closed or full. It reports whether f was scheduled.
func (m *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if m == nil {
		return false
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine manager is closed, task dropped", "task", name)
		return false
	}

	select {
	case m.sema <- struct{}{}:
	default:
		m.mu.Unlock()
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "task", name)
		return false
	}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer func() { <-m.sema }()
		defer m.recover(ctx, name)

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "task canceled before start", "task", name, "because", err)
			return
		}

		if err := f(ctx); err != nil && !errors.Is(err, context.Canceled) {
			m.record(err)
		}
	}()

	return true
}

func (m *Manager) recover(ctx context.Context, name string) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", paths)
	} else {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "panic", rvr, "stack", string(stack))
	}

	m.record(ErrPanic)
}

func (m *Manager) record(err error) {
	m.mu.Lock()
	m.errs = append(m.errs, err)
	m.mu.Unlock()
}

// Wait closes the manager, blocks until running tasks finish and joins their errors.
func (m *Manager) Wait() error {
	if m == nil {
		return nil
	}

	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()

	return errors.Join(m.errs...)
}

// Close satisfies io.Closer for the app closer list.
func (m *Manager) Close() error {
	return m.Wait()
}
