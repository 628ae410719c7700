package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type DeliveryLogsInput struct {
	OTPID string `validate:"required,uuid"`
}

func (s *Usecase) DeliveryLogs(ctx context.Context, in DeliveryLogsInput) ([]entity.DeliveryLog, error) {
	ctx, span := s.startSpan(ctx, "DeliveryLogs")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	logs, err := s.repoDB.ListDeliveryLogsByOTPID(ctx, in.OTPID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list delivery logs", "otp_id", in.OTPID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return logs, nil
}
