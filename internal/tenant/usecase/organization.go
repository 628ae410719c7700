package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/tenant/entity"
)

type (
	OrganizationCreateInput struct {
		ID      string `validate:"omitempty,max=64"`
		Code    string `validate:"required,max=64"`
		Name    string `validate:"required,max=255"`
		Website string `validate:"omitempty,url,max=255"`
	}

	OrganizationDetailInput struct {
		ID string `validate:"required,max=64"`
	}
)

func (s *Usecase) OrganizationCreate(ctx context.Context, in OrganizationCreateInput) (*entity.Organization, error) {
	ctx, span := s.startSpan(ctx, "OrganizationCreate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	now := s.clock.Now()
	org := entity.Organization{
		ID:        lo.CoalesceOrEmpty(strings.TrimSpace(in.ID), s.uuid.Generate()),
		Code:      strings.TrimSpace(in.Code),
		Name:      strings.TrimSpace(in.Name),
		Website:   strings.TrimSpace(in.Website),
		Status:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.repoDB.CreateOrganization(ctx, org)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Organization already exists", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create organization", "org_code", org.Code, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &org, nil
}

func (s *Usecase) OrganizationDetail(ctx context.Context, in OrganizationDetailInput) (*entity.Organization, error) {
	ctx, span := s.startSpan(ctx, "OrganizationDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	org, err := s.repoDB.GetOrganizationByID(ctx, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Organization not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get organization by id", "organization_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return org, nil
}
