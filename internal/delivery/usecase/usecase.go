package usecase

import (
	"context"
	"log/slog"
	"text/template"
	"time"

	"github.com/shandysiswandi/otpgate/internal/delivery/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/idempotency"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/sms"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMessageTemplate = "Your verification code is {{.Code}}. It expires in {{.ExpiresInMinutes}} minutes."
	defaultRetryMax        = 3
	defaultRetryBase       = 200 * time.Millisecond
	maxRetryDelay          = 5 * time.Second
)

type repoDB interface {
	CreateDeliveryLog(ctx context.Context, in entity.CreateDeliveryLog) error
	UpdateDeliveryLog(ctx context.Context, in entity.UpdateDeliveryLog) error
	ListDeliveryLogsByOTPID(ctx context.Context, otpID string) ([]entity.DeliveryLog, error)
}

type repoSMS interface {
	Send(ctx context.Context, msg sms.Message) (sms.Receipt, error)
}

type Usecase struct {
	repoDB    repoDB
	repoSMS   repoSMS
	idemp     idempotency.Idempotency
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation

	tmpl *template.Template
	sent metric.Int64Counter
}

type Dependency struct {
	RepoDB      repoDB
	RepoSMS     repoSMS
	Idempotency idempotency.Idempotency
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	uc := &Usecase{
		repoDB:    dep.RepoDB,
		repoSMS:   dep.RepoSMS,
		idemp:     dep.Idempotency,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		tmpl:      template.Must(template.New("sms").Parse(defaultMessageTemplate)),
	}

	if raw := dep.Config.GetString("modules.delivery.message_template"); raw != "" {
		tmpl, err := template.New("sms").Option("missingkey=error").Parse(raw)
		if err != nil {
			slog.Error("failed to parse sms message template, using default", "error", err)
		} else {
			uc.tmpl = tmpl
		}
	}

	var err error
	uc.sent, err = dep.Instrument.Meter("delivery.usecase").Int64Counter("delivery.sms.sent",
		metric.WithDescription("Number of OTP SMS deliveries by final status"))
	if err != nil {
		slog.Error("failed to create sms sent counter", "error", err)
	}

	return uc
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("delivery.usecase").Start(ctx, name)
}

func (s *Usecase) retryMax() uint64 {
	if n := s.cfg.GetInt("modules.delivery.retry_max"); n > 0 {
		return uint64(n)
	}
	return defaultRetryMax
}

func (s *Usecase) retryBase() time.Duration {
	if ms := s.cfg.GetInt64("modules.delivery.retry_base_ms"); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultRetryBase
}

func (s *Usecase) countSent(ctx context.Context, status entity.DeliveryStatus) {
	if s.sent != nil {
		s.sent.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status.String())))
	}
}
