// Package sms is the delivery transport for OTP codes. Drivers: an HTTP
// provider client and a log driver for development.
package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DriverHTTP = "http"
	DriverLog  = "log"
)

var ErrUnknownDriver = errors.New("sms: unknown driver")

// Message is one text to one phone number.
type Message struct {
	To   string
	Body string
	// Reference is echoed to the provider for correlation, e.g. the OTP id.
	Reference string
}

// Receipt is what the provider reported for an accepted message.
type Receipt struct {
	ProviderMessageID string
	StatusCode        int
	AcceptedAt        time.Time
}

type Gateway interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}

type ErrorKind string

const (
	KindConfig     ErrorKind = "config"
	KindValidation ErrorKind = "validation"
	KindNetwork    ErrorKind = "network"
	KindRateLimit  ErrorKind = "rate_limit"
	KindProvider   ErrorKind = "provider"
	KindRejected   ErrorKind = "rejected"
)

// Error classifies a failed send so callers can decide whether to retry.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "sms %s error", e.Kind)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Retryable is true for network failures, throttling and provider 5xx.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimit, KindProvider:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is an *Error worth retrying. Unknown errors
// are not retried.
func IsRetryable(err error) bool {
	var serr *Error
	return errors.As(err, &serr) && serr.Retryable()
}

type Config struct {
	Driver  string
	HTTP    HTTPConfig
	Timeout time.Duration
}

func New(cfg Config) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverHTTP:
		if cfg.HTTP.Timeout == 0 {
			cfg.HTTP.Timeout = cfg.Timeout
		}
		return NewHTTP(cfg.HTTP)
	case DriverLog, "":
		return NewLog(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
