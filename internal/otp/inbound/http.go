package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	SendOTP(ctx context.Context, in usecase.SendOTPInput) (*usecase.SendOTPOutput, error)
	VerifyOTP(ctx context.Context, in usecase.VerifyOTPInput) (*usecase.VerifyOTPOutput, error)
	OTPDetail(ctx context.Context, in usecase.OTPDetailInput) (*usecase.OTPDetailOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/otp/send", end.SendOTP)
	r.POST("/api/v1/otp/verify", end.VerifyOTP)
	r.GET("/api/v1/otp/:id", end.OTPDetail) // guarded only when app.server.api_keys is set
}
