package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/ecommerce-auth/internal/model"
	"github.com/iliyamo/ecommerce-auth/internal/repository"
)

// memStore is an in-memory implementation of every store interface the
// services depend on. It mirrors the repository contracts, including
// repository.ErrNotFound for absent rows and the atomicity of Rotate.
type memStore struct {
	mu      sync.Mutex
	seq     uint64
	users   map[uint64]model.User
	roles   []model.Role
	devices map[uint64]model.Device
	tokens  map[string]model.RefreshToken
	codes   map[string]model.VerificationCode // keyed by email

	roleLookups int
	roleDelay   time.Duration
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uint64]model.User),
		devices: make(map[uint64]model.Device),
		tokens:  make(map[string]model.RefreshToken),
		codes:   make(map[string]model.VerificationCode),
		roles: []model.Role{
			{ID: 1, Name: model.RoleClient},
			{ID: 2, Name: model.RoleAdmin},
		},
	}
}

func (m *memStore) nextID() uint64 {
	m.seq++
	return m.seq
}

// ----- UserStore -----

func (m *memStore) Create(ctx context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.users {
		if existing.Email == u.Email && existing.DeletedAt == nil {
			return model.User{}, repository.ErrEmailExists
		}
	}
	u.ID = m.nextID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email && u.DeletedAt == nil {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) GetByEmailWithRole(ctx context.Context, email string) (model.User, model.Role, error) {
	u, err := m.GetByEmail(ctx, email)
	if err != nil {
		return model.User{}, model.Role{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.ID == u.RoleID {
			return u, r, nil
		}
	}
	return model.User{}, model.Role{}, repository.ErrNotFound
}

func (m *memStore) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return nil
}

// ----- RoleStore -----

func (m *memStore) GetByName(ctx context.Context, name string) (model.Role, error) {
	m.mu.Lock()
	m.roleLookups++
	delay := m.roleDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return model.Role{}, repository.ErrNotFound
}

// ----- DeviceStore -----

func (m *memStore) CreateDevice(ctx context.Context, userID uint64, userAgent, ip string) (model.Device, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := model.Device{
		ID:         m.nextID(),
		UserID:     userID,
		UserAgent:  userAgent,
		IP:         ip,
		LastActive: time.Now().UTC(),
		IsActive:   true,
	}
	m.devices[d.ID] = d
	return d, nil
}

func (m *memStore) Deactivate(ctx context.Context, deviceID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[deviceID]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsActive = false
	m.devices[deviceID] = d
	return nil
}

func (m *memStore) DeactivateAllForUser(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.devices {
		if d.UserID == userID {
			d.IsActive = false
			m.devices[id] = d
		}
	}
	return nil
}

// ----- TokenStore -----

func (m *memStore) CreateToken(ctx context.Context, t model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID()
	t.CreatedAt = time.Now().UTC()
	m.tokens[t.Token] = t
	return nil
}

func (m *memStore) GetWithUserRole(ctx context.Context, token string) (model.RefreshToken, model.User, model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[token]
	if !ok {
		return model.RefreshToken{}, model.User{}, model.Role{}, repository.ErrNotFound
	}
	u, ok := m.users[t.UserID]
	if !ok {
		return model.RefreshToken{}, model.User{}, model.Role{}, repository.ErrNotFound
	}
	for _, r := range m.roles {
		if r.ID == u.RoleID {
			return t, u, r, nil
		}
	}
	return model.RefreshToken{}, model.User{}, model.Role{}, repository.ErrNotFound
}

func (m *memStore) Rotate(ctx context.Context, oldToken string, next model.RefreshToken, userAgent, ip string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[oldToken]; !ok {
		return repository.ErrNotFound
	}
	if d, ok := m.devices[next.DeviceID]; ok {
		d.UserAgent = userAgent
		d.IP = ip
		d.LastActive = time.Now().UTC()
		m.devices[next.DeviceID] = d
	}
	delete(m.tokens, oldToken)
	next.ID = m.nextID()
	next.CreatedAt = time.Now().UTC()
	m.tokens[next.Token] = next
	return nil
}

func (m *memStore) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tokens[token]; !ok {
		return repository.ErrNotFound
	}
	delete(m.tokens, token)
	return nil
}

func (m *memStore) DeleteAllForUser(ctx context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tok, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, tok)
		}
	}
	return nil
}

// ----- CodeStore -----

func (m *memStore) Upsert(ctx context.Context, c model.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.codes[c.Email]; ok {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
	} else {
		c.ID = m.nextID()
		c.CreatedAt = time.Now().UTC()
	}
	m.codes[c.Email] = c
	return nil
}

func (m *memStore) Find(ctx context.Context, email, code, purpose string) (model.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[email]
	if !ok || c.Code != code || c.Purpose != purpose {
		return model.VerificationCode{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *memStore) DeleteCode(ctx context.Context, email, code, purpose string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.codes[email]
	if ok && c.Code == code && c.Purpose == purpose {
		delete(m.codes, email)
	}
	return nil
}

// Adapters fanning memStore out to the store interfaces whose method
// names collide on a single type.

type memDevices struct{ *memStore }

func (m memDevices) Create(ctx context.Context, userID uint64, userAgent, ip string) (model.Device, error) {
	return m.CreateDevice(ctx, userID, userAgent, ip)
}

type memTokens struct{ *memStore }

func (m memTokens) Create(ctx context.Context, t model.RefreshToken) error {
	return m.CreateToken(ctx, t)
}

type memCodes struct{ *memStore }

func (m memCodes) Delete(ctx context.Context, email, code, purpose string) error {
	return m.DeleteCode(ctx, email, code, purpose)
}

// fakeNotifier records sent codes and can be told to fail.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

type sentCode struct {
	email, code, purpose string
}

func (n *fakeNotifier) SendCode(ctx context.Context, email, code, purpose string) error {
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	n.sent = append(n.sent, sentCode{email: email, code: code, purpose: purpose})
	n.mu.Unlock()
	return nil
}

func (n *fakeNotifier) last() sentCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentCode{}
	}
	return n.sent[len(n.sent)-1]
}
