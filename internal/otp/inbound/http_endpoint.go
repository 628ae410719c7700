package inbound

import (
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes OTP issuance and verification over HTTP.
type HTTPEndpoint struct {
	uc uc
}

// SendOTP issues a new code for the (user, organization, phone) scope.
// @Summary Send OTP
// @Description Issues a 5 digit code valid for the configured window and hands it to SMS delivery.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Send OTP payload"
// @Success 200 {object} router.successResponse{data=SendOTPResponse} "OTP issued"
// @Failure 400 {object} router.errorResponse "Invalid user or organization"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/send [post]
func (h *HTTPEndpoint) SendOTP(r *router.Request) (any, error) {
	var req SendOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendOTP(r.Context(), usecase.SendOTPInput{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		PhoneNumber:    req.PhoneNumber,
	})
	if err != nil {
		return nil, err
	}

	return SendOTPResponse{OTPID: resp.OTPID, ExpiresAt: resp.ExpiresAt}, nil
}

// VerifyOTP consumes the latest pending code of the scope.
// @Summary Verify OTP
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Verify OTP payload"
// @Success 200 {object} router.successResponse{data=VerifyOTPResponse} "OTP verified"
// @Failure 400 {object} router.errorResponse "Invalid or expired OTP"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/otp/verify [post]
func (h *HTTPEndpoint) VerifyOTP(r *router.Request) (any, error) {
	var req VerifyOTPRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOTP(r.Context(), usecase.VerifyOTPInput{
		UserID:         req.UserID,
		OrganizationID: req.OrganizationID,
		PhoneNumber:    req.PhoneNumber,
		Code:           req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOTPResponse{OTPID: resp.OTPID, Verified: resp.Verified}, nil
}

// OTPDetail returns the lifecycle state of one record without its code.
// @Summary OTP detail
// @Tags OTP
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "OTP ID"
// @Success 200 {object} router.successResponse{data=OTPDetailResponse} "OTP detail"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "OTP not found"
// @Router /api/v1/otp/{id} [get]
func (h *HTTPEndpoint) OTPDetail(r *router.Request) (any, error) {
	resp, err := h.uc.OTPDetail(r.Context(), usecase.OTPDetailInput{ID: r.GetParam("id")})
	if err != nil {
		return nil, err
	}

	rec := resp.Record
	return OTPDetailResponse{
		ID:             rec.ID,
		UserID:         rec.Scope.UserID,
		OrganizationID: rec.Scope.OrganizationID,
		Status:         rec.Status.String(),
		CreatedAt:      rec.CreatedAt,
		ExpiresAt:      rec.ExpiresAt,
		VerifiedAt:     rec.VerifiedAt,
	}, nil
}
