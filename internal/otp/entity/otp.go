package entity

import (
	"errors"
	"time"
)

var (
	ErrInvalidTenant        = errors.New("otp: invalid user or organization")
	ErrInvalidOrExpiredCode = errors.New("otp: invalid or expired code")
	ErrStorageUnavailable   = errors.New("otp: storage unavailable")
	// ErrAlreadyTerminal is returned by the store when a conditional transition
	// finds the record no longer pending. It never leaves the usecase.
	ErrAlreadyTerminal = errors.New("otp: record already terminal")
)

const (
	CodeLength = 5
	DefaultTTL = 5 * time.Minute
)

type Status int16

const (
	StatusUnknown Status = 0

	// StatusPending is the only non-terminal state. Every record starts here.
	StatusPending Status = 1

	// StatusVerified mean the code was consumed by a successful verification.
	StatusVerified Status = 2

	// StatusExpired mean a verification arrived after expires_at.
	StatusExpired Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusVerified:
		return "VERIFIED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusExpired
}

// CanTransition allows only PENDING to VERIFIED or EXPIRED.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && to.IsTerminal()
}

// Scope is the (user, organization, phone) triple an OTP is bound to.
type Scope struct {
	UserID         string
	OrganizationID string
	Phone          string
}

type Record struct {
	ID         string
	Scope      Scope
	Code       string
	Status     Status
	CreatedAt  time.Time
	ExpiresAt  time.Time
	VerifiedAt *time.Time
}

// IsExpiredAt reports whether now is strictly past the expiry instant.
func (r Record) IsExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type NewRecord struct {
	Scope     Scope
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}
