package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrTopicRequired   = errors.New("messaging: topic is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrClosed          = errors.New("messaging: client is closed")
)

// Messaging is a broker client that can publish and consume.
type Messaging interface {
	io.Closer
	Publisher
	Consumer
}

type Publisher interface {
	Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer blocks in Consume until ctx is done or the broker fails.
type Consumer interface {
	Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes one message. With auto-ack, nil acks and an error nacks.
type Handler func(ctx context.Context, msg Message) error

type OutgoingMessage struct {
	Body []byte
	// Key partitions Kafka topics and orders Pub/Sub deliveries.
	Key     []byte
	Headers map[string]string
}

type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	ID() string
	Topic() string
	Body() []byte
	Header(key string) string
	Headers() map[string]string
	Timestamp() time.Time
	// Attempts counts deliveries including this one, 1 when the broker does not track it.
	Attempts() int

	Ack(ctx context.Context) error
	Nack(ctx context.Context) error
}
