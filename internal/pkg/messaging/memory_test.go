package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startConsumer runs Consume in the background and waits until the group is registered.
func startConsumer(t *testing.T, m *messaging.Memory, topic string, h messaging.Handler, opts ...messaging.ConsumeOption) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Consume(ctx, topic, h, opts...)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Consume registers its queue synchronously before blocking, give it a moment.
	time.Sleep(20 * time.Millisecond)
	return cancel
}

func TestMemory_PublishConsume(t *testing.T) {
	m := messaging.NewMemory(messaging.MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	got := make(chan messaging.Message, 1)
	startConsumer(t, m, "otp_issued", func(_ context.Context, msg messaging.Message) error {
		got <- msg
		return nil
	}, messaging.WithGroup("delivery"), messaging.WithAutoAck(true))

	res, err := m.Publish(context.Background(), "otp_issued", messaging.OutgoingMessage{
		Body:    []byte(`{"otp_id":"1"}`),
		Headers: map[string]string{"cID": "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, "otp_issued", res.Topic)

	select {
	case msg := <-got:
		assert.Equal(t, `{"otp_id":"1"}`, string(msg.Body()))
		assert.Equal(t, "abc", msg.Header("cID"))
		assert.Equal(t, 1, msg.Attempts())
		assert.Equal(t, res.MessageID, msg.ID())
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}

func TestMemory_NackRedelivers(t *testing.T) {
	m := messaging.NewMemory(messaging.MemoryConfig{MaxAttempts: 3})
	t.Cleanup(func() { _ = m.Close() })

	var mu sync.Mutex
	var attempts []int
	done := make(chan struct{})
	startConsumer(t, m, "t", func(_ context.Context, msg messaging.Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts = append(attempts, msg.Attempts())
		if len(attempts) == 3 {
			close(done)
		}
		return errors.New("transient")
	}, messaging.WithAutoAck(true))

	_, err := m.Publish(context.Background(), "t", messaging.OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected redeliveries")
	}

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestMemory_GroupsFanOut(t *testing.T) {
	m := messaging.NewMemory(messaging.MemoryConfig{})
	t.Cleanup(func() { _ = m.Close() })

	a := make(chan struct{}, 1)
	b := make(chan struct{}, 1)
	startConsumer(t, m, "t", func(context.Context, messaging.Message) error { a <- struct{}{}; return nil }, messaging.WithGroup("a"))
	startConsumer(t, m, "t", func(context.Context, messaging.Message) error { b <- struct{}{}; return nil }, messaging.WithGroup("b"))

	_, err := m.Publish(context.Background(), "t", messaging.OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)

	for _, ch := range []chan struct{}{a, b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("group did not receive message")
		}
	}
}

func TestMemory_PanicIsRecovered(t *testing.T) {
	m := messaging.NewMemory(messaging.MemoryConfig{MaxAttempts: 1})
	t.Cleanup(func() { _ = m.Close() })

	calls := make(chan struct{}, 2)
	startConsumer(t, m, "t", func(context.Context, messaging.Message) error {
		calls <- struct{}{}
		panic("boom")
	}, messaging.WithAutoAck(true))

	_, err := m.Publish(context.Background(), "t", messaging.OutgoingMessage{Body: []byte("x")})
	require.NoError(t, err)
	_, err = m.Publish(context.Background(), "t", messaging.OutgoingMessage{Body: []byte("y")})
	require.NoError(t, err)

	for range 2 {
		select {
		case <-calls:
		case <-time.After(time.Second):
			t.Fatal("consumer stopped after panic")
		}
	}
}

func TestMemory_Validation(t *testing.T) {
	m := messaging.NewMemory(messaging.MemoryConfig{})

	_, err := m.Publish(context.Background(), "", messaging.OutgoingMessage{})
	assert.ErrorIs(t, err, messaging.ErrTopicRequired)
	assert.ErrorIs(t, m.Consume(context.Background(), "t", nil), messaging.ErrHandlerRequired)

	require.NoError(t, m.Close())
	_, err = m.Publish(context.Background(), "t", messaging.OutgoingMessage{})
	assert.ErrorIs(t, err, messaging.ErrClosed)
}

func TestNewFromDriver(t *testing.T) {
	mq, err := messaging.NewFromDriver(context.Background(), "memory", messaging.FactoryOptions{})
	require.NoError(t, err)
	assert.NoError(t, mq.Close())

	_, err = messaging.NewFromDriver(context.Background(), "carrier-pigeon", messaging.FactoryOptions{})
	assert.ErrorIs(t, err, messaging.ErrUnknownDriver)
}
