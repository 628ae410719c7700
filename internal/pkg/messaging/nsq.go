package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nsq "github.com/nsqio/go-nsq"
	"go.uber.org/atomic"
)

var ErrNSQAddrRequired = errors.New("messaging: nsq nsqd or lookupd address is required")

type NSQConfig struct {
	ProducerAddr string
	NSQDAddrs    []string
	LookupdAddrs []string
}

// nsqEnvelope carries headers, which NSQ has no native slot for.
type nsqEnvelope struct {
	Headers map[string]string `json:"h,omitempty"`
	Body    []byte            `json:"b"`
}

type NSQ struct {
	cfg      NSQConfig
	producer *nsq.Producer
	closed   atomic.Bool
}

func NewNSQ(cfg NSQConfig) (*NSQ, error) {
	n := &NSQ{cfg: cfg}
	if cfg.ProducerAddr == "" {
		return n, nil
	}

	p, err := nsq.NewProducer(cfg.ProducerAddr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("messaging: nsq new producer: %w", err)
	}
	p.SetLoggerLevel(nsq.LogLevelError)
	n.producer = p

	return n, nil
}

func (n *NSQ) Close() error {
	if n.closed.CompareAndSwap(false, true) && n.producer != nil {
		n.producer.Stop()
	}
	return nil
}

func (n *NSQ) Publish(ctx context.Context, topic string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if topic == "" {
		return PublishResult{}, ErrTopicRequired
	}
	if n.closed.Load() {
		return PublishResult{}, ErrClosed
	}
	if n.producer == nil {
		return PublishResult{}, ErrNSQAddrRequired
	}

	payload, err := json.Marshal(nsqEnvelope{Headers: msg.Headers, Body: msg.Body})
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq encode: %w", err)
	}
	if err := n.producer.Publish(topic, payload); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nsq publish: %w", err)
	}

	return PublishResult{Topic: topic, Timestamp: time.Now()}, nil
}

// Consume reads topic through the group channel until ctx is done.
func (n *NSQ) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if len(n.cfg.NSQDAddrs) == 0 && len(n.cfg.LookupdAddrs) == 0 {
		return ErrNSQAddrRequired
	}

	co := newConsumeOptions(opts...)
	if co.group == "" {
		return ErrGroupRequired
	}

	ccfg := nsq.NewConfig()
	ccfg.MaxInFlight = max(co.maxInFlight, co.concurrency)

	consumer, err := nsq.NewConsumer(topic, co.group, ccfg)
	if err != nil {
		return fmt.Errorf("messaging: nsq new consumer: %w", err)
	}
	consumer.SetLoggerLevel(nsq.LogLevelError)

	consumer.AddConcurrentHandlers(nsq.HandlerFunc(func(m *nsq.Message) error {
		m.DisableAutoResponse()
		//nolint:errcheck // outcome already applied through ack/nack
		_ = dispatch(ctx, DriverNSQ, nsqMessage(topic, m), handler, co.autoAck)
		return nil
	}), co.concurrency)

	if len(n.cfg.LookupdAddrs) > 0 {
		err = consumer.ConnectToNSQLookupds(n.cfg.LookupdAddrs)
	} else {
		err = consumer.ConnectToNSQDs(n.cfg.NSQDAddrs)
	}
	if err != nil {
		consumer.Stop()
		<-consumer.StopChan
		return fmt.Errorf("messaging: nsq connect: %w", err)
	}

	select {
	case <-ctx.Done():
		consumer.Stop()
		<-consumer.StopChan
		return ctx.Err()
	case <-consumer.StopChan:
		return nil
	}
}

func nsqMessage(topic string, m *nsq.Message) *message {
	var env nsqEnvelope
	if err := json.Unmarshal(m.Body, &env); err != nil {
		env = nsqEnvelope{Body: m.Body}
	}

	return &message{
		id:       string(m.ID[:]),
		topic:    topic,
		body:     env.Body,
		headers:  env.Headers,
		ts:       time.Unix(0, m.Timestamp),
		attempts: int(m.Attempts),
		ack:      func(context.Context) error { m.Finish(); return nil },
		nack:     func(context.Context) error { m.Requeue(-1); return nil },
	}
}
