package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type (
	VerifyOTPInput struct {
		UserID         string `validate:"required,max=64"`
		OrganizationID string `validate:"required,max=64"`
		PhoneNumber    string `validate:"required,phone"`
		Code           string `validate:"required,otpcode"`
	}

	VerifyOTPOutput struct {
		OTPID    string
		Verified bool
	}
)

func errInvalidOrExpired() error {
	return goerror.NewBusinessWrap(entity.ErrInvalidOrExpiredCode, "Invalid or expired OTP", goerror.CodeBadRequest)
}

func errStorage(err error) error {
	return goerror.NewServer(fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err))
}

// VerifyOTP consumes the latest pending code for the scope. Wrong code, unknown
// scope, expiry and a lost race all fail with the same error.
func (s *Usecase) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	stored, err := s.hash.Hash(in.Code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	scope := entity.Scope{UserID: in.UserID, OrganizationID: in.OrganizationID, Phone: in.PhoneNumber}
	rec, err := s.repoDB.FindLatestPending(ctx, scope, string(stored))
	if errors.Is(err, goerror.ErrNotFound) {
		s.countVerification(ctx, "invalid")
		return nil, errInvalidOrExpired()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find latest pending otp", "user_id", in.UserID, "organization_id", in.OrganizationID, "error", err)
		return nil, errStorage(err)
	}

	now := s.clock.Now()
	if rec.IsExpiredAt(now) {
		err := s.repoDB.MarkExpired(ctx, rec.ID)
		if err != nil && !errors.Is(err, entity.ErrAlreadyTerminal) {
			slog.ErrorContext(ctx, "failed to repo mark otp expired", "otp_id", rec.ID, "error", err)
			return nil, errStorage(err)
		}
		s.countVerification(ctx, "expired")
		return nil, errInvalidOrExpired()
	}

	if err := s.repoDB.MarkVerified(ctx, rec.ID, now); err != nil {
		if errors.Is(err, entity.ErrAlreadyTerminal) {
			slog.WarnContext(ctx, "otp transitioned by a concurrent verifier", "otp_id", rec.ID)
			s.countVerification(ctx, "conflict")
			return nil, errInvalidOrExpired()
		}
		slog.ErrorContext(ctx, "failed to repo mark otp verified", "otp_id", rec.ID, "error", err)
		return nil, errStorage(err)
	}

	s.countVerification(ctx, "verified")
	return &VerifyOTPOutput{OTPID: rec.ID, Verified: true}, nil
}
