package model

import "time"

// Purposes a one-time verification code can be issued for, stored in
// verification_codes.purpose.
const (
	CodePurposeRegister       = "REGISTER"
	CodePurposeForgotPassword = "FORGOT_PASSWORD"
)

// VerificationCode is a short-lived one-time code proving control of an
// email address for a specific purpose. At most one live code exists
// per email: a new request overwrites the previous row's code and
// expiry. The row is deleted when the code is consumed and is simply
// garbage once expired.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – address the code was sent to (unique).
//  Code      – 6-digit numeric code.
//  Purpose   – REGISTER or FORGOT_PASSWORD.
//  ExpiresAt – expiry timestamp (creation time + configured TTL).
//  CreatedAt – timestamp of creation.
type VerificationCode struct {
	ID        uint64    // verification_codes.id
	Email     string    // verification_codes.email
	Code      string    // verification_codes.code
	Purpose   string    // verification_codes.purpose
	ExpiresAt time.Time // verification_codes.expires_at
	CreatedAt time.Time // verification_codes.created_at
}
