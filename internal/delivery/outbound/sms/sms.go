package sms

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SMS struct {
	client sms.Gateway
	ins    instrument.Instrumentation
}

func New(client sms.Gateway, ins instrument.Instrumentation) *SMS {
	return &SMS{client: client, ins: ins}
}

func (m *SMS) Send(ctx context.Context, msg sms.Message) (sms.Receipt, error) {
	ctx, span := m.ins.Tracer("delivery.outbound.sms").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(attribute.String("sms.reference", msg.Reference))

	receipt, err := m.client.Send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return sms.Receipt{}, err
	}

	span.SetAttributes(attribute.String("sms.provider_message_id", receipt.ProviderMessageID))
	return receipt, nil
}
