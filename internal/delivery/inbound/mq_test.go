package inbound_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/delivery/inbound"
	"github.com/shandysiswandi/otpgate/internal/delivery/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type recordingUsecase struct {
	mu   sync.Mutex
	in   []usecase.DeliverOTPInput
	cIDs []string
}

func (r *recordingUsecase) DeliverOTP(ctx context.Context, in usecase.DeliverOTPInput) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.in = append(r.in, in)
	r.cIDs = append(r.cIDs, instrument.GetCorrelationID(ctx))
	return nil
}

func (r *recordingUsecase) DeliveryLogs(context.Context, usecase.DeliveryLogsInput) ([]entity.DeliveryLog, error) {
	return nil, nil
}

func (r *recordingUsecase) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.in)
}

func TestRegisterMQConsumer_OTPIssued(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("modules: {delivery: {consumer_names: otp_issued_delivery}}"))
	require.NoError(t, err)

	broker := messaging.NewMemory(messaging.MemoryConfig{})
	t.Cleanup(func() { _ = broker.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	routine := goroutine.NewManager(4)
	uc := &recordingUsecase{}

	inbound.RegisterMQConsumer(ctx, cfg, routine, broker, fixedID("generated"), uc, instrument.NewNoop())
	t.Cleanup(func() {
		cancel()
		_ = routine.Wait()
	})

	// the consumer registers its group asynchronously
	time.Sleep(50 * time.Millisecond)

	exp := time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC)
	body, err := json.Marshal(event.OTPIssuedMessage{OTPID: "otp-1", Phone: "+1555", Code: "12345", ExpiresAt: exp})
	require.NoError(t, err)

	_, err = broker.Publish(context.Background(), event.OTPIssuedDestination, messaging.OutgoingMessage{
		Body:    body,
		Headers: map[string]string{"cID": "cid-from-producer"},
	})
	require.NoError(t, err)
	_, err = broker.Publish(context.Background(), event.OTPIssuedDestination, messaging.OutgoingMessage{Body: []byte("not json")})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return uc.calls() == 1 }, time.Second, 10*time.Millisecond)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	assert.Equal(t, usecase.DeliverOTPInput{OTPID: "otp-1", Phone: "+1555", Code: "12345", ExpiresAt: exp}, uc.in[0])
	assert.Equal(t, "cid-from-producer", uc.cIDs[0])
}
