package tenant

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"github.com/shandysiswandi/otpgate/internal/tenant/inbound"
	"github.com/shandysiswandi/otpgate/internal/tenant/outbound/db"
	"github.com/shandysiswandi/otpgate/internal/tenant/usecase"
)

// Lookup is what other modules may ask of tenant.
type Lookup interface {
	IsMember(ctx context.Context, userID, organizationID string) (bool, error)
}

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	// RegisterHTTP mounts the management endpoints. The lookup is built either way.
	RegisterHTTP bool
}

func New(dep Dependency) (Lookup, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		UUID:       dep.UUID,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	})

	if dep.RegisterHTTP {
		inbound.RegisterHTTPEndpoint(dep.Router, uc)
	}

	return uc, nil
}
