package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// fakeProvider stands in for Google: it returns a fixed identity for a
// known code and records the state it was handed.
type fakeProvider struct {
	identity Identity
	err      error
	state    string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	p.state = state
	return "https://provider.example/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (Identity, error) {
	if p.err != nil {
		return Identity{}, p.err
	}
	return p.identity, nil
}

func newTestGoogle(t *testing.T, ms *memStore, provider IdentityProvider) *GoogleService {
	t.Helper()
	auth, _ := newTestAuth(t, ms, &fakeNotifier{})
	roles := NewRoleResolver(ms)
	return NewGoogleService(provider, ms, memDevices{ms}, roles, auth, bcrypt.MinCost)
}

func TestAuthorizationURLCarriesClientState(t *testing.T) {
	ms := newMemStore()
	provider := &fakeProvider{}
	gs := newTestGoogle(t, ms, provider)

	u, err := gs.AuthorizationURL("my-agent", "10.1.2.3")
	if err != nil {
		t.Fatalf("authorization url: %v", err)
	}
	if !strings.HasPrefix(u, "https://provider.example/auth") {
		t.Fatalf("unexpected url %q", u)
	}

	raw, err := base64.StdEncoding.DecodeString(provider.state)
	if err != nil {
		t.Fatalf("state is not base64: %v", err)
	}
	var cs clientState
	if err := json.Unmarshal(raw, &cs); err != nil {
		t.Fatalf("state is not json: %v", err)
	}
	if cs.UserAgent != "my-agent" || cs.IP != "10.1.2.3" {
		t.Fatalf("state = %+v, want my-agent/10.1.2.3", cs)
	}
}

func TestCallbackProvisionsFirstTimeUser(t *testing.T) {
	ms := newMemStore()
	provider := &fakeProvider{identity: Identity{
		Email:  "new@gmail.com",
		Name:   "New Person",
		Avatar: "https://img.example/p.png",
	}}
	gs := newTestGoogle(t, ms, provider)

	state := mustState(t, "cb-agent", "10.9.9.9")
	pair, err := gs.Callback(context.Background(), "good-code", state)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}

	user, err := ms.GetByEmail(context.Background(), "new@gmail.com")
	if err != nil {
		t.Fatalf("provisioned user missing: %v", err)
	}
	if user.RoleID != 1 {
		t.Fatalf("role = %d, want Client role id 1", user.RoleID)
	}
	if user.Avatar == nil || *user.Avatar != "https://img.example/p.png" {
		t.Fatal("avatar not stored")
	}
	if user.PasswordHash == "" {
		t.Fatal("provisioned user must still carry a (random) password hash")
	}

	row := ms.tokens[pair.RefreshToken]
	device := ms.devices[row.DeviceID]
	if device.UserAgent != "cb-agent" || device.IP != "10.9.9.9" {
		t.Fatalf("device context = %q/%q, want cb-agent/10.9.9.9", device.UserAgent, device.IP)
	}
}

func TestCallbackReusesExistingAccount(t *testing.T) {
	ms := newMemStore()
	existing := seedUser(t, ms, "known@gmail.com", "some-password", model.UserStatusActive)
	provider := &fakeProvider{identity: Identity{Email: "known@gmail.com", Name: "Known"}}
	gs := newTestGoogle(t, ms, provider)

	pair, err := gs.Callback(context.Background(), "good-code", mustState(t, "ua", "ip"))
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if len(ms.users) != 1 {
		t.Fatalf("users = %d, want 1 (no duplicate provisioning)", len(ms.users))
	}
	if row := ms.tokens[pair.RefreshToken]; row.UserID != existing.ID {
		t.Fatalf("pair minted for user %d, want %d", row.UserID, existing.ID)
	}
}

func TestCallbackToleratesBadState(t *testing.T) {
	ms := newMemStore()
	provider := &fakeProvider{identity: Identity{Email: "new@gmail.com"}}
	gs := newTestGoogle(t, ms, provider)

	pair, err := gs.Callback(context.Background(), "good-code", "%%%not-base64%%%")
	if err != nil {
		t.Fatalf("callback with bad state must still succeed: %v", err)
	}
	row := ms.tokens[pair.RefreshToken]
	device := ms.devices[row.DeviceID]
	if device.UserAgent != "Unknown" || device.IP != "Unknown" {
		t.Fatalf("device context = %q/%q, want Unknown/Unknown", device.UserAgent, device.IP)
	}
}

func TestCallbackCollapsesFailures(t *testing.T) {
	ms := newMemStore()
	provider := &fakeProvider{err: errors.New("provider rejected the code")}
	gs := newTestGoogle(t, ms, provider)

	_, err := gs.Callback(context.Background(), "bad-code", "")
	if !errors.Is(err, ErrFederationFailure) {
		t.Fatalf("got %v, want ErrFederationFailure", err)
	}
}

func mustState(t *testing.T, userAgent, ip string) string {
	t.Helper()
	raw, err := json.Marshal(clientState{UserAgent: userAgent, IP: ip})
	if err != nil {
		t.Fatalf("marshal state: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}
