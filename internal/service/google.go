package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/iliyamo/ecommerce-auth/internal/model"
	"github.com/iliyamo/ecommerce-auth/internal/repository"
	"github.com/iliyamo/ecommerce-auth/internal/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	goauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity is the assertion the external provider makes about a user
// after a successful code exchange.
type Identity struct {
	Email  string
	Name   string
	Avatar string
}

// IdentityProvider exchanges an authorization code for an identity
// assertion. The Google implementation lives below; tests substitute a
// fake.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

// googleProvider implements IdentityProvider against Google's OAuth2
// endpoints and userinfo API.
type googleProvider struct {
	conf *oauth2.Config
}

// NewGoogleProvider builds the production Google identity provider.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) IdentityProvider {
	return &googleProvider{conf: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.profile",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}}
}

func (p *googleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *googleProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	svc, err := goauth.NewService(ctx, option.WithTokenSource(p.conf.TokenSource(ctx, tok)))
	if err != nil {
		return Identity{}, fmt.Errorf("userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Email == "" {
		return Identity{}, errors.New("no email in userinfo")
	}
	return Identity{Email: info.Email, Name: info.Name, Avatar: info.Picture}, nil
}

// clientState rides the OAuth state parameter so the callback can bind
// the minted session to the device that started the flow.
type clientState struct {
	UserAgent string `json:"userAgent"`
	IP        string `json:"ip"`
}

// GoogleService is the federation adapter: an alternate entry point
// into the same device-creation and token-minting path as password
// login, auto-provisioning local accounts on first federated sign-in.
type GoogleService struct {
	provider   IdentityProvider
	users      UserStore
	devices    DeviceStore
	roles      *RoleResolver
	auth       *AuthService
	bcryptCost int
}

func NewGoogleService(provider IdentityProvider, users UserStore, devices DeviceStore, roles *RoleResolver, auth *AuthService, bcryptCost int) *GoogleService {
	return &GoogleService{
		provider:   provider,
		users:      users,
		devices:    devices,
		roles:      roles,
		auth:       auth,
		bcryptCost: bcryptCost,
	}
}

// AuthorizationURL returns the provider URL to redirect the user to,
// with the caller's client context carried in the state parameter as
// base64 JSON.
func (s *GoogleService) AuthorizationURL(userAgent, ip string) (string, error) {
	raw, err := json.Marshal(clientState{UserAgent: userAgent, IP: ip})
	if err != nil {
		return "", err
	}
	return s.provider.AuthCodeURL(base64.StdEncoding.EncodeToString(raw)), nil
}

// Callback completes a federated login: exchange the code, map the
// asserted email to a local account (provisioning one with the Client
// role and a random never-disclosed password if absent), then create a
// device and mint a pair exactly as direct login does. Every failure
// collapses to ErrFederationFailure; the handler redirects with an
// error indicator instead of surfacing internals.
func (s *GoogleService) Callback(ctx context.Context, code, state string) (*TokenPair, error) {
	userAgent, ip := decodeState(state)

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		log.Printf("google: code exchange failed: %v", err)
		return nil, ErrFederationFailure
	}

	user, role, err := s.users.GetByEmailWithRole(ctx, identity.Email)
	if errors.Is(err, repository.ErrNotFound) {
		user, role, err = s.provision(ctx, identity)
	}
	if err != nil {
		log.Printf("google: resolve account failed: %v", err)
		return nil, ErrFederationFailure
	}

	device, err := s.devices.Create(ctx, user.ID, userAgent, ip)
	if err != nil {
		log.Printf("google: create device failed: %v", err)
		return nil, ErrFederationFailure
	}
	pair, err := s.auth.MintTokenPair(ctx, user.ID, role.ID, role.Name, device.ID)
	if err != nil {
		log.Printf("google: mint pair failed: %v", err)
		return nil, ErrFederationFailure
	}
	return pair, nil
}

// provision creates a local account for a first-time federated login.
// The password is a random uuid that is never disclosed, so the account
// can only authenticate via federation until a recovery flow sets one.
func (s *GoogleService) provision(ctx context.Context, identity Identity) (model.User, model.Role, error) {
	roleID, err := s.roles.Resolve(ctx, model.RoleClient)
	if err != nil {
		return model.User{}, model.Role{}, err
	}
	hash, err := utils.HashPassword(uuid.NewString(), s.bcryptCost)
	if err != nil {
		return model.User{}, model.Role{}, err
	}
	u := model.User{
		Email:        identity.Email,
		Name:         identity.Name,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
		RoleID:       roleID,
	}
	if identity.Avatar != "" {
		avatar := identity.Avatar
		u.Avatar = &avatar
	}
	user, err := s.users.Create(ctx, u)
	if err != nil {
		return model.User{}, model.Role{}, err
	}
	return user, model.Role{ID: roleID, Name: model.RoleClient}, nil
}

// decodeState recovers the client context from the state parameter. An
// absent or unparseable state falls back to "Unknown" metadata rather
// than failing the whole flow.
func decodeState(state string) (userAgent, ip string) {
	userAgent, ip = "Unknown", "Unknown"
	if state == "" {
		return
	}
	raw, err := base64.StdEncoding.DecodeString(state)
	if err != nil {
		return
	}
	var cs clientState
	if err := json.Unmarshal(raw, &cs); err != nil {
		return
	}
	if cs.UserAgent != "" {
		userAgent = cs.UserAgent
	}
	if cs.IP != "" {
		ip = cs.IP
	}
	return
}
