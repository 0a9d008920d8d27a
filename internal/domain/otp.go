package domain

import "time"

type OTPPurpose string

const (
	OTPRegister OTPPurpose = "register"
	OTPLogin    OTPPurpose = "login"
)

func ParseOTPPurpose(s string) (OTPPurpose, bool) {
	switch OTPPurpose(s) {
	case OTPRegister, OTPLogin:
		return OTPPurpose(s), true
	default:
		return "", false
	}
}

// OTPChallenge is one issued sign-in code. At most one unconsumed challenge
// exists per (email, purpose); a new request supersedes the prior one.
type OTPChallenge struct {
	ID         int64
	Email      string
	Purpose    OTPPurpose
	CodeHash   string
	Attempts   int
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}

// RefreshToken is the stored record of an opaque refresh credential. Tokens
// are grouped into families; rotation moves the family forward and reuse of
// a rotated token revokes the whole family.
type RefreshToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	Family    string
	ExpiresAt time.Time
	RotatedAt *time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
