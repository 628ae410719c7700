package usecase

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/tenant/entity"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	CreateOrganization(ctx context.Context, org entity.Organization) error
	GetOrganizationByID(ctx context.Context, id string) (*entity.Organization, error)

	CreateUser(ctx context.Context, u entity.User) error
	GetUserByID(ctx context.Context, organizationID, userID string) (*entity.User, error)
	ListUsersByOrganization(ctx context.Context, organizationID string) ([]entity.User, error)
	ExistsMembership(ctx context.Context, userID, organizationID string) (bool, error)
}

type Usecase struct {
	repoDB    repoDB
	uuid      uid.StringID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	UUID       uid.StringID
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		uuid:      dep.UUID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("tenant.usecase").Start(ctx, name)
}
