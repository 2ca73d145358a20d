package model

import "time"

// RefreshToken models an entry in the `refresh_tokens` table. The signed
// JWT string itself is the lookup key and is stored verbatim: a refresh
// or logout that cannot find the row treats the token as revoked, which
// makes "never issued", "already rotated" and "logged out" look
// identical to the caller. Rows are single use: rotation deletes the
// row while inserting its replacement.
//
// Fields:
//  ID        – primary key identifier.
//  Token     – the signed refresh JWT, stored verbatim (unique).
//  UserID    – owner of the token.
//  DeviceID  – device the token is bound to.
//  ExpiresAt – expiration timestamp, copied from the token's own exp claim.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	Token     string    // refresh_tokens.token
	UserID    uint64    // refresh_tokens.user_id
	DeviceID  uint64    // refresh_tokens.device_id
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
