package messaging

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

const defaultMemoryGroup = "default"

type MemoryConfig struct {
	// Buffer is the per-group queue size. Publish blocks when a queue is full.
	Buffer int
	// MaxAttempts bounds redelivery after Nack. Zero means 3.
	MaxAttempts int
}

type memoryEnvelope struct {
	id       string
	body     []byte
	headers  map[string]string
	ts       time.Time
	attempts int
}

// Memory is an in-process broker. Every consumer group gets its own queue so
// each group sees each message once; workers of one group share that queue.
type Memory struct {
	cfg MemoryConfig

	mu     sync.Mutex
	topics map[string]map[string]chan memoryEnvelope

	seq    atomic.Uint64
	closed atomic.Bool
	done   chan struct{}
}

func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 256
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Memory{
		cfg:    cfg,
		topics: make(map[string]map[string]chan memoryEnvelope),
		done:   make(chan struct{}),
	}
}

func (m *Memory) queue(topic, group string) chan memoryEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, ok := m.topics[topic]
	if !ok {
		groups = make(map[string]chan memoryEnvelope)
		m.topics[topic] = groups
	}
	q, ok := groups[group]
	if !ok {
		q = make(chan memoryEnvelope, m.cfg.Buffer)
		groups[group] = q
	}
	return q
}

func (m *Memory) queues(topic string) []chan memoryEnvelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]chan memoryEnvelope, 0, len(m.topics[topic]))
	for _, q := range m.topics[topic] {
		out = append(out, q)
	}
	return out
}

// Publish fans out to every group registered on topic. Messages published
// before any consumer exists are dropped, like a NATS subject.
func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}
	if m.closed.Load() {
		return PublishResult{}, ErrClosed
	}

	env := memoryEnvelope{
		id:       strconv.FormatUint(m.seq.Inc(), 10),
		body:     append([]byte(nil), msg.Body...),
		headers:  copyHeaders(msg.Headers),
		ts:       time.Now(),
		attempts: 1,
	}

	for _, q := range m.queues(topic) {
		select {
		case q <- env:
		case <-ctx.Done():
			return PublishResult{}, ctx.Err()
		case <-m.done:
			return PublishResult{}, ErrClosed
		}
	}

	return PublishResult{MessageID: env.id, Topic: topic, Timestamp: env.ts}, nil
}

// Consume registers the group queue and processes it until ctx is done or
// the broker is closed.
func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if m.closed.Load() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	if co.group == "" {
		co.group = defaultMemoryGroup
	}
	q := m.queue(topic, co.group)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case env := <-q:
					m.handle(ctx, topic, q, env, handler, co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	if m.closed.Load() {
		return nil
	}
	return ctx.Err()
}

func (m *Memory) handle(ctx context.Context, topic string, q chan memoryEnvelope, env memoryEnvelope, handler Handler, autoAck bool) {
	msg := &message{
		id:       env.id,
		topic:    topic,
		body:     env.body,
		headers:  env.headers,
		ts:       env.ts,
		attempts: env.attempts,
		nack: func(context.Context) error {
			if env.attempts >= m.cfg.MaxAttempts {
				return nil
			}
			env.attempts++
			select {
			case q <- env:
			default:
			}
			return nil
		},
	}

	//nolint:errcheck // outcome already applied through ack/nack
	_ = dispatch(ctx, DriverMemory, msg, handler, autoAck)
}

func (m *Memory) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		close(m.done)
	}
	return nil
}

func copyHeaders(h map[string]string) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}
