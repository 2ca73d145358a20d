package service

import (
	"context"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// The services depend on narrow store interfaces rather than the
// concrete MySQL repositories so the persistence engine stays an
// external collaborator. Implementations signal an absent row with
// repository.ErrNotFound. internal/repository satisfies all of these.

// UserStore is the slice of user persistence the auth flows need.
type UserStore interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByEmailWithRole(ctx context.Context, email string) (model.User, model.Role, error)
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

// RoleStore resolves role reference data.
type RoleStore interface {
	GetByName(ctx context.Context, name string) (model.Role, error)
}

// DeviceStore records login-session client context.
type DeviceStore interface {
	Create(ctx context.Context, userID uint64, userAgent, ip string) (model.Device, error)
	Deactivate(ctx context.Context, deviceID uint64) error
	DeactivateAllForUser(ctx context.Context, userID uint64) error
}

// TokenStore persists single-use refresh tokens. Rotate must replace
// the old row with the new one atomically and return
// repository.ErrNotFound when the old row is already gone.
type TokenStore interface {
	Create(ctx context.Context, t model.RefreshToken) error
	GetWithUserRole(ctx context.Context, token string) (model.RefreshToken, model.User, model.Role, error)
	Rotate(ctx context.Context, oldToken string, next model.RefreshToken, userAgent, ip string) error
	Delete(ctx context.Context, token string) error
	DeleteAllForUser(ctx context.Context, userID uint64) error
}

// CodeStore persists one-time verification codes, at most one live row
// per email.
type CodeStore interface {
	Upsert(ctx context.Context, c model.VerificationCode) error
	Find(ctx context.Context, email, code, purpose string) (model.VerificationCode, error)
	Delete(ctx context.Context, email, code, purpose string) error
}

// Notifier delivers a one-time code to a user. The production
// implementation publishes to the otp.email queue; delivery failure
// surfaces as ErrDeliveryFailed to the requester.
type Notifier interface {
	SendCode(ctx context.Context, email, code, purpose string) error
}
