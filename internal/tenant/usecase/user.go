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
	UserCreateInput struct {
		ID             string `validate:"omitempty,max=64"`
		OrganizationID string `validate:"required,max=64"`
		Email          string `validate:"required,email,max=255"`
		Phone          string `validate:"omitempty,phone"`
		Theme          string `validate:"omitempty,oneof=light dark"`
	}

	UserListInput struct {
		OrganizationID string `validate:"required,max=64"`
	}

	UserDetailInput struct {
		OrganizationID string `validate:"required,max=64"`
		UserID         string `validate:"required,max=64"`
	}
)

func (s *Usecase) UserCreate(ctx context.Context, in UserCreateInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserCreate")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.organization(ctx, in.OrganizationID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	u := entity.User{
		ID:             lo.CoalesceOrEmpty(strings.TrimSpace(in.ID), s.uuid.Generate()),
		OrganizationID: in.OrganizationID,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:          in.Phone,
		Status:         true,
		Theme:          entity.ThemeFromString(in.Theme),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.repoDB.CreateUser(ctx, u)
	if errors.Is(err, goerror.ErrConflict) {
		return nil, goerror.NewBusiness("Email already registered", goerror.CodeConflict)
	}
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Organization not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo create user", "organization_id", in.OrganizationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &u, nil
}

func (s *Usecase) UserList(ctx context.Context, in UserListInput) ([]entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if _, err := s.organization(ctx, in.OrganizationID); err != nil {
		return nil, err
	}

	users, err := s.repoDB.ListUsersByOrganization(ctx, in.OrganizationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list users", "organization_id", in.OrganizationID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return users, nil
}

func (s *Usecase) UserDetail(ctx context.Context, in UserDetailInput) (*entity.User, error) {
	ctx, span := s.startSpan(ctx, "UserDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	u, err := s.repoDB.GetUserByID(ctx, in.OrganizationID, in.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("User not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "organization_id", in.OrganizationID, "user_id", in.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return u, nil
}

func (s *Usecase) organization(ctx context.Context, id string) (*entity.Organization, error) {
	org, err := s.repoDB.GetOrganizationByID(ctx, id)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("Organization not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get organization by id", "organization_id", id, "error", err)
		return nil, goerror.NewServer(err)
	}
	return org, nil
}
