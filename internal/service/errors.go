package service

import "errors"

// Domain errors returned by the credential and session services.
// Handlers map these to transport responses; anything not in this list
// is an internal failure and must not leak to clients.
var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password. The two cases are deliberately indistinguishable so the
	// login endpoint cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidCode means no verification code matches the supplied
	// (email, code, purpose) tuple exactly.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrCodeExpired means the tuple matched but the code's TTL has
	// passed.
	ErrCodeExpired = errors.New("verification code expired")

	// ErrEmailAlreadyExists is returned when registering, or requesting
	// a REGISTER code, for an address that already has an account.
	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrEmailNotFound is returned when a flow requires an existing
	// account for the address and none exists.
	ErrEmailNotFound = errors.New("email not found")

	// ErrDeliveryFailed is returned when the one-time code could not be
	// handed to the notification capability.
	ErrDeliveryFailed = errors.New("code delivery failed")

	// ErrUnauthorized covers every bad-token outcome on refresh and
	// logout: bad signature, expired, never issued, already rotated,
	// already logged out. Collapsing them closes a disclosure
	// side-channel.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRoleNotFound means the roles reference data was never seeded.
	// This is a fatal misconfiguration, not a recoverable error.
	ErrRoleNotFound = errors.New("role not found")

	// ErrFederationFailure is the opaque catch-all for any failure
	// during federated login; callers redirect with an error indicator
	// rather than surface internals.
	ErrFederationFailure = errors.New("federated login failed")
)
