// Package token signs and verifies the access/refresh token pair. It is
// a pure capability with no persistence: the session service decides
// what to do with the strings it produces.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token fails signature or expiry
// checks, or does not carry the expected claim shape.
var ErrInvalidToken = errors.New("invalid token")

// Payload is the claim set a caller supplies when minting a token. The
// access token carries the role name so downstream authorization needs
// no database round trip.
type Payload struct {
	UserID   uint64
	RoleID   uint64
	RoleName string
	DeviceID uint64
}

// Claims is the full signed claim set. UUID is random per issuance:
// the refresh token's literal string is the persisted lookup key, so
// two tokens minted for the same subject in the same millisecond must
// never be byte-identical.
type Claims struct {
	UserID   uint64 `json:"userId"`
	RoleID   uint64 `json:"roleId"`
	RoleName string `json:"roleName"`
	DeviceID uint64 `json:"deviceId"`
	UUID     string `json:"uuid"`
	jwt.RegisteredClaims
}

// Codec signs HS256 JWTs with distinct secrets and TTLs for the access
// and refresh halves of a pair.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// SignAccess mints a short-lived access token.
func (c *Codec) SignAccess(p Payload) (string, error) {
	return sign(c.accessSecret, c.accessTTL, p)
}

// SignRefresh mints a long-lived refresh token.
func (c *Codec) SignRefresh(p Payload) (string, error) {
	return sign(c.refreshSecret, c.refreshTTL, p)
}

// VerifyAccess checks signature and expiry of an access token and
// returns its claims.
func (c *Codec) VerifyAccess(raw string) (*Claims, error) {
	return verify(c.accessSecret, raw)
}

// VerifyRefresh checks signature and expiry of a refresh token and
// returns its claims. The session service relies on the returned exp to
// persist an expiry byte-identical to what a later verification will
// compute.
func (c *Codec) VerifyRefresh(raw string) (*Claims, error) {
	return verify(c.refreshSecret, raw)
}

func sign(secret []byte, ttl time.Duration, p Payload) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		UserID:   p.UserID,
		RoleID:   p.RoleID,
		RoleName: p.RoleName,
		DeviceID: p.DeviceID,
		UUID:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(secret []byte, raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
