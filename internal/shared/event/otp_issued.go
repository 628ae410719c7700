package event

import "time"

const OTPIssuedDestination string = "otp_issued"
const OTPIssuedConsumerDelivery string = "otp_issued_delivery"

// OTPIssuedMessage hands a freshly issued code to the delivery side.
// Code is the plaintext code; consumers must not log the body unmasked.
type OTPIssuedMessage struct {
	OTPID          string    `json:"otp_id"`
	UserID         string    `json:"user_id"`
	OrganizationID string    `json:"organization_id"`
	Phone          string    `json:"phone"`
	Code           string    `json:"code"`
	ExpiresAt      time.Time `json:"expires_at"`
}
