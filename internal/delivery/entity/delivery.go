package entity

import (
	"errors"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

type Channel string

const ChannelSMS Channel = "sms"

func (c Channel) String() string { return string(c) }

type DeliveryStatus int16

const (
	DeliveryStatusUnknown    DeliveryStatus = 0
	DeliveryStatusQueued     DeliveryStatus = 1
	DeliveryStatusProcessing DeliveryStatus = 2
	DeliveryStatusSent       DeliveryStatus = 3
	DeliveryStatusFailed     DeliveryStatus = 4
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusQueued:
		return "queued"
	case DeliveryStatusProcessing:
		return "processing"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type DeliveryLog struct {
	ID               int64
	OTPID            string
	Channel          Channel
	Recipient        string
	Status           DeliveryStatus
	Attempts         int
	ProviderResponse valueobject.JSONMap
	ErrorMessage     *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	SentAt           *time.Time
}

type CreateDeliveryLog struct {
	ID        int64
	OTPID     string
	Channel   Channel
	Recipient string
	Status    DeliveryStatus
	CreatedAt time.Time
}

type UpdateDeliveryLog struct {
	ID               int64
	Status           DeliveryStatus
	Attempts         int
	ProviderResponse valueobject.JSONMap
	ErrorMessage     *string
	UpdatedAt        time.Time
	SentAt           *time.Time
}

// ErrDeliveryFailed marks a send that exhausted its retries. It is final for
// the message and must not trigger a broker redelivery.
var ErrDeliveryFailed = errors.New("delivery: sms delivery failed")
