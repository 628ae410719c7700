package inbound

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/delivery/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/messaging"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc   uc
	uuid uid.StringID
	ins  instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, msg messaging.Message) context.Context {
	if cID := msg.Header(keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// OTPIssuedDelivery decodes otp_issued and hands it to DeliverOTP. The body
// carries the plaintext code; the log mask handler redacts it inside msg_body.
func (h *MQHandler) OTPIssuedDelivery(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg)

	ctx, span := h.ins.Tracer("delivery.inbound.mq").Start(ctx, "OTPIssuedDelivery")
	defer span.End()

	body := msg.Body()

	var payload event.OTPIssuedMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of otp issued", "message_id", msg.ID(), "error", err)
		return nil
	}

	slog.InfoContext(ctx, "consume: otp issued delivery", "message_id", msg.ID(), "attempts", msg.Attempts(), "msg_body", string(body))

	if err := h.uc.DeliverOTP(ctx, usecase.DeliverOTPInput{
		OTPID:     payload.OTPID,
		Phone:     payload.Phone,
		Code:      payload.Code,
		ExpiresAt: payload.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to consume otp issued", "otp_id", payload.OTPID, "error", err)
		return err
	}

	return nil
}
