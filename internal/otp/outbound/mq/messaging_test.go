package mq_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/outbound/mq"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordPublisher struct {
	topic string
	msg   messaging.OutgoingMessage
	err   error
}

func (r *recordPublisher) Publish(_ context.Context, topic string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	r.topic = topic
	r.msg = msg
	return messaging.PublishResult{Topic: topic}, r.err
}

func TestMessaging_PublishOTPIssued(t *testing.T) {
	pub := &recordPublisher{}
	m := mq.NewMessaging(pub, instrument.NewNoop())
	exp := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)

	ctx := instrument.SetCorrelationID(context.Background(), "cid-123")
	err := m.PublishOTPIssued(ctx, usecase.OTPIssuedEvent{
		OTPID:          "otp-1",
		UserID:         "u1",
		OrganizationID: "o1",
		Phone:          "+1555",
		Code:           "12345",
		ExpiresAt:      exp,
	})
	require.NoError(t, err)

	assert.Equal(t, event.OTPIssuedDestination, pub.topic)
	assert.Equal(t, "cid-123", pub.msg.Headers["cID"])
	assert.Equal(t, []byte("otp-1"), pub.msg.Key)

	var body event.OTPIssuedMessage
	require.NoError(t, json.Unmarshal(pub.msg.Body, &body))
	assert.Equal(t, event.OTPIssuedMessage{
		OTPID:          "otp-1",
		UserID:         "u1",
		OrganizationID: "o1",
		Phone:          "+1555",
		Code:           "12345",
		ExpiresAt:      exp,
	}, body)
}

func TestMessaging_PublishOTPIssued_Error(t *testing.T) {
	pub := &recordPublisher{err: errors.New("broker down")}
	m := mq.NewMessaging(pub, instrument.NewNoop())

	err := m.PublishOTPIssued(context.Background(), usecase.OTPIssuedEvent{OTPID: "otp-1"})

	assert.EqualError(t, err, "broker down")
}
