package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/ecommerce-auth/internal/model"
	"github.com/iliyamo/ecommerce-auth/internal/repository"
	"github.com/iliyamo/ecommerce-auth/internal/token"
	"github.com/iliyamo/ecommerce-auth/internal/utils"
	"golang.org/x/sync/errgroup"
)

// TokenPair is the result of every successful authentication: a
// short-lived stateless access token and a long-lived single-use
// refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService is the session engine. It owns the token pair lifecycle
// from minting through rotation and revocation, plus registration and
// the forgot-password flow, and is the single minting path that both
// password login and federated login funnel into.
type AuthService struct {
	users        UserStore
	devices      DeviceStore
	tokens       TokenStore
	roles        *RoleResolver
	verification *VerificationService
	codec        *token.Codec
	bcryptCost   int
}

func NewAuthService(users UserStore, devices DeviceStore, tokens TokenStore, roles *RoleResolver, verification *VerificationService, codec *token.Codec, bcryptCost int) *AuthService {
	return &AuthService{
		users:        users,
		devices:      devices,
		tokens:       tokens,
		roles:        roles,
		verification: verification,
		codec:        codec,
		bcryptCost:   bcryptCost,
	}
}

// SendOTP requests a one-time code for the email. The purpose-specific
// precondition lives here, keeping the verification flow itself
// purpose-agnostic: REGISTER requires the address to be free,
// FORGOT_PASSWORD requires it to belong to an account.
func (s *AuthService) SendOTP(ctx context.Context, email, purpose string) error {
	_, err := s.users.GetByEmail(ctx, email)
	exists := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	switch purpose {
	case model.CodePurposeRegister:
		if exists {
			return ErrEmailAlreadyExists
		}
	case model.CodePurposeForgotPassword:
		if !exists {
			return ErrEmailNotFound
		}
	}
	return s.verification.RequestCode(ctx, email, purpose)
}

// Register creates a user gated by a REGISTER code. The code is
// validated up front but only consumed after the user row exists, so a
// failed insert does not burn it.
func (s *AuthService) Register(ctx context.Context, email, password, name, phoneNumber, code string) (model.User, error) {
	if _, err := s.verification.Validate(ctx, email, code, model.CodePurposeRegister); err != nil {
		return model.User{}, err
	}

	roleID, err := s.roles.Resolve(ctx, model.RoleClient)
	if err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Create(ctx, model.User{
		Email:        email,
		Name:         name,
		PhoneNumber:  phoneNumber,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
		RoleID:       roleID,
	})
	if errors.Is(err, repository.ErrEmailExists) {
		return model.User{}, ErrEmailAlreadyExists
	}
	if err != nil {
		return model.User{}, err
	}

	if err := s.verification.Consume(ctx, email, code, model.CodePurposeRegister); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Login authenticates email+password and mints a token pair bound to a
// brand-new device row carrying the supplied client context. An unknown
// email and a wrong password return the same error, and so does a
// BLOCKED account, so the endpoint gives away nothing about which
// accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent, ip string) (*TokenPair, error) {
	user, role, err := s.users.GetByEmailWithRole(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Status == model.UserStatusBlocked {
		return nil, ErrInvalidCredentials
	}

	device, err := s.devices.Create(ctx, user.ID, userAgent, ip)
	if err != nil {
		return nil, err
	}
	return s.MintTokenPair(ctx, user.ID, role.ID, role.Name, device.ID)
}

// MintTokenPair signs a pair for the subject and persists the refresh
// half. Federated login reuses this path after resolving its own user.
func (s *AuthService) MintTokenPair(ctx context.Context, userID, roleID uint64, roleName string, deviceID uint64) (*TokenPair, error) {
	pair, row, err := s.signPair(userID, roleID, roleName, deviceID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return nil, err
	}
	return pair, nil
}

// signPair signs the access and refresh tokens concurrently (the two
// signatures are computationally independent) and builds the row to
// persist. The refresh token's own exp claim is decoded back out rather
// than recomputed so the stored expiry is byte-identical to what a
// later verification will see.
func (s *AuthService) signPair(userID, roleID uint64, roleName string, deviceID uint64) (*TokenPair, model.RefreshToken, error) {
	payload := token.Payload{UserID: userID, RoleID: roleID, RoleName: roleName, DeviceID: deviceID}

	var access, refresh string
	var g errgroup.Group
	g.Go(func() error {
		var err error
		access, err = s.codec.SignAccess(payload)
		return err
	})
	g.Go(func() error {
		var err error
		refresh, err = s.codec.SignRefresh(payload)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, model.RefreshToken{}, fmt.Errorf("sign pair: %w", err)
	}

	claims, err := s.codec.VerifyRefresh(refresh)
	if err != nil {
		return nil, model.RefreshToken{}, fmt.Errorf("decode refresh expiry: %w", err)
	}
	row := model.RefreshToken{
		Token:     refresh,
		UserID:    userID,
		DeviceID:  deviceID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, row, nil
}

// Refresh rotates a token pair. The replacement pair is signed first;
// only then are the device update, old-row delete and new-row insert
// executed as one transaction, so there is never a window where the old
// token is revoked without its replacement existing. Every failure mode
// collapses to ErrUnauthorized: a verified-but-absent row covers "never
// issued", "already rotated" and "logged out" identically.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, userAgent, ip string) (*TokenPair, error) {
	if _, err := s.codec.VerifyRefresh(refreshToken); err != nil {
		return nil, ErrUnauthorized
	}

	row, user, role, err := s.tokens.GetWithUserRole(ctx, refreshToken)
	if err != nil {
		return nil, ErrUnauthorized
	}

	pair, next, err := s.signPair(user.ID, role.ID, role.Name, row.DeviceID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if err := s.tokens.Rotate(ctx, refreshToken, next, userAgent, ip); err != nil {
		// Includes losing a rotation race: another request consumed the
		// row between lookup and rotate.
		return nil, ErrUnauthorized
	}
	return pair, nil
}

// Logout verifies the refresh token, deletes its row and marks the
// bound device inactive. Deliberately not idempotent: a second logout
// with the same token finds no row and reports ErrUnauthorized, exactly
// like any other revoked token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return ErrUnauthorized
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return ErrUnauthorized
	}
	if err := s.devices.Deactivate(ctx, claims.DeviceID); err != nil {
		return err
	}
	return nil
}

// ForgotPassword sets a new password gated by a FORGOT_PASSWORD code,
// then revokes every refresh token and deactivates every device the
// user has, so a credential reset also ends any session an attacker may
// be holding.
func (s *AuthService) ForgotPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrEmailNotFound
	}
	if err != nil {
		return err
	}

	if _, err := s.verification.Validate(ctx, email, code, model.CodePurposeForgotPassword); err != nil {
		return err
	}

	hash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.verification.Consume(ctx, email, code, model.CodePurposeForgotPassword); err != nil {
		return err
	}

	if err := s.tokens.DeleteAllForUser(ctx, user.ID); err != nil {
		return err
	}
	return s.devices.DeactivateAllForUser(ctx, user.ID)
}
