package inbound

import "time"

type SendOTPRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	PhoneNumber    string `json:"phone_number"`
}

type SendOTPResponse struct {
	OTPID     string    `json:"otp_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (SendOTPResponse) Message() string {
	return "OTP sent successfully"
}

type VerifyOTPRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	PhoneNumber    string `json:"phone_number"`
	Code           string `json:"code"`
}

type VerifyOTPResponse struct {
	OTPID    string `json:"otp_id"`
	Verified bool   `json:"verified"`
}

func (VerifyOTPResponse) Message() string {
	return "OTP verified successfully"
}

type OTPDetailResponse struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	OrganizationID string     `json:"organization_id"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      time.Time  `json:"expires_at"`
	VerifiedAt     *time.Time `json:"verified_at"`
}
