package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/delivery"
	"github.com/shandysiswandi/otpgate/internal/otp"
	"github.com/shandysiswandi/otpgate/internal/tenant"
)

func (a *App) initModules() {
	// The lookup is always built: otp depends on it even when the tenant
	// endpoints are switched off.
	lookup, err := tenant.New(tenant.Dependency{
		DBConn:       a.dbConn,
		Router:       a.router,
		Instrument:   a.ins,
		UUID:         a.uuid,
		Clock:        a.clock,
		Validator:    a.validator,
		RegisterHTTP: a.config.GetBool("modules.tenant.enabled"),
	})
	if err != nil {
		slog.Error("failed to init module tenant", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			Ctx:        a.ctx,
			DBConn:     a.dbConn,
			Goroutine:  a.goroutine,
			Router:     a.router,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
			Tenant:     lookup,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.delivery.enabled") {
		if err := delivery.New(delivery.Dependency{
			Ctx:         a.ctx,
			DBConn:      a.dbConn,
			Goroutine:   a.goroutine,
			Router:      a.router,
			Messaging:   a.messaging,
			Idempotency: a.idemp,
			SMS:         a.sms,
			Config:      a.config,
			Instrument:  a.ins,
			UID:         a.uid,
			UUID:        a.uuid,
			Clock:       a.clock,
			Validator:   a.validator,
		}); err != nil {
			slog.Error("failed to init module delivery", "error", err)
			os.Exit(1)
		}
	}
}
