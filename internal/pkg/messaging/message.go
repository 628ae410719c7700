package messaging

import (
	"context"
	"net/textproto"
	"time"

	"go.uber.org/atomic"
)

// message adapts every driver to Message. ack and nack run at most once in total.
type message struct {
	id       string
	topic    string
	body     []byte
	headers  map[string]string
	ts       time.Time
	attempts int

	ack  func(ctx context.Context) error
	nack func(ctx context.Context) error

	responded atomic.Bool
}

func (m *message) ID() string                 { return m.id }
func (m *message) Topic() string              { return m.topic }
func (m *message) Body() []byte               { return m.body }
func (m *message) Headers() map[string]string { return m.headers }
func (m *message) Timestamp() time.Time       { return m.ts }

func (m *message) Header(key string) string {
	if v, ok := m.headers[key]; ok {
		return v
	}
	return m.headers[textproto.CanonicalMIMEHeaderKey(key)]
}

func (m *message) Attempts() int {
	if m.attempts < 1 {
		return 1
	}
	return m.attempts
}

func (m *message) Ack(ctx context.Context) error {
	return m.respond(ctx, m.ack)
}

func (m *message) Nack(ctx context.Context) error {
	return m.respond(ctx, m.nack)
}

func (m *message) respond(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.responded.Swap(true) || fn == nil {
		return nil
	}
	return fn(ctx)
}

// dispatch runs handler with panic recovery and applies auto-ack.
func dispatch(ctx context.Context, driver string, msg *message, handler Handler, autoAck bool) error {
	herr := callHandlerWithRecover(ctx, driver, func() error {
		return handler(ctx, msg)
	})
	if !autoAck || msg.responded.Load() {
		return herr
	}

	if herr != nil {
		return msg.Nack(ctx)
	}
	return msg.Ack(ctx)
}
