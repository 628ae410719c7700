package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
)

type (
	SendOTPInput struct {
		UserID         string `validate:"required,max=64"`
		OrganizationID string `validate:"required,max=64"`
		PhoneNumber    string `validate:"required,phone"`
	}

	SendOTPOutput struct {
		OTPID     string
		ExpiresAt time.Time
	}
)

func (s *Usecase) SendOTP(ctx context.Context, in SendOTPInput) (*SendOTPOutput, error) {
	ctx, span := s.startSpan(ctx, "SendOTP")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ok, err := s.tenant.IsMember(ctx, in.UserID, in.OrganizationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to lookup tenant membership", "user_id", in.UserID, "organization_id", in.OrganizationID, "error", err)
		return nil, goerror.NewServer(fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err))
	}
	if !ok {
		slog.WarnContext(ctx, "otp requested for non member", "user_id", in.UserID, "organization_id", in.OrganizationID)
		return nil, goerror.NewBusinessWrap(entity.ErrInvalidTenant, "Invalid user or organization", goerror.CodeBadRequest)
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	stored, err := s.hash.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash otp code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	rec, err := s.repoDB.Insert(ctx, entity.NewRecord{
		Scope: entity.Scope{
			UserID:         in.UserID,
			OrganizationID: in.OrganizationID,
			Phone:          in.PhoneNumber,
		},
		Code:      string(stored),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo insert otp", "user_id", in.UserID, "organization_id", in.OrganizationID, "error", err)
		return nil, goerror.NewServer(fmt.Errorf("%w: %w", entity.ErrStorageUnavailable, err))
	}

	s.countIssued(ctx)

	// Delivery is best effort, the record stays valid when the hand-off fails.
	if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
		OTPID:          rec.ID,
		UserID:         rec.Scope.UserID,
		OrganizationID: rec.Scope.OrganizationID,
		Phone:          rec.Scope.Phone,
		Code:           code,
		ExpiresAt:      rec.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "otp_id", rec.ID, "error", err)
	}

	return &SendOTPOutput{OTPID: rec.ID, ExpiresAt: rec.ExpiresAt}, nil
}
