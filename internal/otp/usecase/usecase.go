package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/otpcode"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	Insert(ctx context.Context, in entity.NewRecord) (*entity.Record, error)
	FindLatestPending(ctx context.Context, scope entity.Scope, code string) (*entity.Record, error)
	GetByID(ctx context.Context, id string) (*entity.Record, error)
	MarkExpired(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string, at time.Time) error
	ExpireStale(ctx context.Context, before time.Time) (int64, error)
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
}

// tenantLookup answers whether a user belongs to an organization.
type tenantLookup interface {
	IsMember(ctx context.Context, userID, organizationID string) (bool, error)
}

type OTPIssuedEvent struct {
	OTPID          string
	UserID         string
	OrganizationID string
	Phone          string
	Code           string
	ExpiresAt      time.Time
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	tenant        tenantLookup
	code          otpcode.Generator
	hash          hash.Hash
	cfg           config.Config
	clock         clock.Clocker
	validator     validator.Validator
	ins           instrument.Instrumentation

	issued        metric.Int64Counter
	verifications metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Tenant        tenantLookup
	Code          otpcode.Generator
	Hash          hash.Hash
	Config        config.Config
	Clock         clock.Clocker
	Validator     validator.Validator
	Instrument    instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		tenant:        dep.Tenant,
		code:          dep.Code,
		hash:          dep.Hash,
		cfg:           dep.Config,
		clock:         dep.Clock,
		validator:     dep.Validator,
		ins:           dep.Instrument,
	}

	meter := dep.Instrument.Meter("otp.usecase")

	var err error
	uc.issued, err = meter.Int64Counter("otp.issued", metric.WithDescription("Number of OTP records issued"))
	if err != nil {
		slog.Error("failed to create otp issued counter", "error", err)
	}
	uc.verifications, err = meter.Int64Counter("otp.verifications", metric.WithDescription("Number of OTP verification attempts by result"))
	if err != nil {
		slog.Error("failed to create otp verification counter", "error", err)
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

// ttl reads modules.otp.ttl_seconds and falls back to entity.DefaultTTL.
func (s *Usecase) ttl() time.Duration {
	if s.cfg == nil {
		return entity.DefaultTTL
	}
	if d := s.cfg.GetSecond("modules.otp.ttl_seconds"); d > 0 {
		return d
	}
	return entity.DefaultTTL
}

func (s *Usecase) countIssued(ctx context.Context) {
	if s.issued != nil {
		s.issued.Add(ctx, 1)
	}
}

func (s *Usecase) countVerification(ctx context.Context, result string) {
	if s.verifications != nil {
		s.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
}
