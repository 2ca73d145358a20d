package service

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/ecommerce-auth/internal/repository"
	"golang.org/x/sync/singleflight"
)

// RoleResolver maps role names to their identifiers. Roles are static
// reference data, so each name is looked up at most once per process
// and cached forever. Concurrent first accesses for the same name are
// collapsed into a single query by the singleflight group.
type RoleResolver struct {
	store RoleStore
	group singleflight.Group

	mu  sync.RWMutex
	ids map[string]uint64
}

func NewRoleResolver(store RoleStore) *RoleResolver {
	return &RoleResolver{store: store, ids: make(map[string]uint64)}
}

// Resolve returns the identifier for a role name. A missing role means
// the reference data was never seeded and surfaces as ErrRoleNotFound.
func (r *RoleResolver) Resolve(ctx context.Context, name string) (uint64, error) {
	r.mu.RLock()
	id, ok := r.ids[name]
	r.mu.RUnlock()
	if ok {
		return id, nil
	}

	v, err, _ := r.group.Do(name, func() (interface{}, error) {
		role, err := r.store.GetByName(ctx, name)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoleNotFound
		}
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.ids[name] = role.ID
		r.mu.Unlock()
		return role.ID, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(uint64), nil
}
