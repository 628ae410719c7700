package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/valueobject"
)

type DeliverOTPInput struct {
	OTPID     string `validate:"required,uuid"`
	Phone     string `validate:"required,phone"`
	Code      string `validate:"required,otpcode"`
	ExpiresAt time.Time
}

// DeliverOTP sends the code once per OTP id. Only infrastructure failures
// (idempotency or log store down, lock held by another worker) are returned so
// the broker can redeliver; a send that exhausted its retries is final.
func (s *Usecase) DeliverOTP(ctx context.Context, in DeliverOTPInput) error {
	ctx, span := s.startSpan(ctx, "DeliverOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "otp_id", in.OTPID, "error", err)
		return nil
	}

	now := s.clock.Now()
	if now.After(in.ExpiresAt) {
		slog.WarnContext(ctx, "skip delivery of expired otp", "otp_id", in.OTPID, "expires_at", in.ExpiresAt)
		return nil
	}

	var body bytes.Buffer
	if err := s.tmpl.Execute(&body, map[string]any{
		"Code":             in.Code,
		"ExpiresInMinutes": int(math.Ceil(in.ExpiresAt.Sub(now).Minutes())),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to render sms body", "otp_id", in.OTPID, "error", err)
		return nil
	}

	err := s.idemp.Exec(ctx, "delivery:otp:"+in.OTPID, func(ctx context.Context) error {
		return s.deliver(ctx, in, body.String())
	}, idempotency.WithStateTTL(s.cfg.GetSecond("modules.delivery.idempotency_ttl_seconds")))

	switch {
	case err == nil:
		return nil
	case errors.Is(err, idempotency.ErrAlreadyCompleted), errors.Is(err, idempotency.ErrAlreadyFailed):
		slog.InfoContext(ctx, "otp delivery already handled", "otp_id", in.OTPID, "reason", err.Error())
		return nil
	case errors.Is(err, entity.ErrDeliveryFailed):
		slog.ErrorContext(ctx, "failed to deliver otp", "otp_id", in.OTPID, "error", err)
		return nil
	default:
		slog.ErrorContext(ctx, "failed to run otp delivery", "otp_id", in.OTPID, "error", err)
		return err
	}
}

func (s *Usecase) deliver(ctx context.Context, in DeliverOTPInput, body string) error {
	logID := s.uid.Generate()
	if err := s.repoDB.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:        logID,
		OTPID:     in.OTPID,
		Channel:   entity.ChannelSMS,
		Recipient: in.Phone,
		Status:    entity.DeliveryStatusQueued,
		CreatedAt: s.clock.Now(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "otp_id", in.OTPID, "error", err)
		// nothing was sent yet, so the redelivered message may try again
		return idempotency.Retryable(err)
	}

	b := retry.NewExponential(s.retryBase())
	b = retry.WithCappedDuration(maxRetryDelay, b)
	b = retry.WithMaxRetries(s.retryMax(), b)

	var (
		attempts int
		receipt  sms.Receipt
	)
	sendErr := retry.Do(ctx, b, func(ctx context.Context) error {
		attempts++

		var err error
		receipt, err = s.repoSMS.Send(ctx, sms.Message{To: in.Phone, Body: body, Reference: in.OTPID})
		if err == nil {
			return nil
		}
		if sms.IsRetryable(err) {
			slog.WarnContext(ctx, "sms send failed, retrying", "otp_id", in.OTPID, "attempt", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return err
	})

	now := s.clock.Now()
	up := entity.UpdateDeliveryLog{
		ID:        logID,
		Attempts:  attempts,
		UpdatedAt: now,
	}
	if sendErr == nil {
		up.Status = entity.DeliveryStatusSent
		up.SentAt = &now
		up.ProviderResponse = valueobject.JSONMap{
			"provider_message_id": receipt.ProviderMessageID,
			"status_code":         receipt.StatusCode,
		}
	} else {
		msg := sendErr.Error()
		up.Status = entity.DeliveryStatusFailed
		up.ErrorMessage = &msg
		up.ProviderResponse = providerError(sendErr)
	}

	if err := s.repoDB.UpdateDeliveryLog(ctx, up); err != nil {
		slog.ErrorContext(ctx, "failed to repo update delivery log", "log_id", logID, "status", up.Status.String(), "error", err)
	}
	s.countSent(ctx, up.Status)

	if sendErr != nil {
		return fmt.Errorf("%w: %w", entity.ErrDeliveryFailed, sendErr)
	}

	slog.InfoContext(ctx, "otp delivered", "otp_id", in.OTPID, "log_id", logID, "attempts", attempts)
	return nil
}

func providerError(err error) valueobject.JSONMap {
	out := valueobject.JSONMap{"error": err.Error()}

	var serr *sms.Error
	if errors.As(err, &serr) {
		out["kind"] = string(serr.Kind)
		if serr.StatusCode != 0 {
			out["status_code"] = serr.StatusCode
		}
	}
	return out
}
