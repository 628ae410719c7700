package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/delivery/usecase"
)

type uc interface {
	DeliverOTP(ctx context.Context, in usecase.DeliverOTPInput) error
	DeliveryLogs(ctx context.Context, in usecase.DeliveryLogsInput) ([]entity.DeliveryLog, error)
}
