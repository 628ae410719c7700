package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type (
	OTPDetailInput struct {
		ID string `validate:"required,uuid"`
	}

	OTPDetailOutput struct {
		Record entity.Record
	}
)

// OTPDetail returns the record status. The stored code is blanked.
func (s *Usecase) OTPDetail(ctx context.Context, in OTPDetailInput) (*OTPDetailOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	rec, err := s.repoDB.GetByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("OTP not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get otp by id", "otp_id", in.ID, "error", err)
		return nil, errStorage(err)
	}

	out := *rec
	out.Code = ""

	return &OTPDetailOutput{Record: out}, nil
}
