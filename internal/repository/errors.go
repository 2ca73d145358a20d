// Package repository defines error values that are reused across
// multiple repositories. These sentinel values allow higher layers such
// as services to distinguish between failure scenarios without
// inspecting driver error strings. A lookup that matches no row returns
// ErrNotFound rather than the driver's own sentinel so callers never
// depend on database/sql directly.
package repository

import "errors"

// ErrNotFound is returned when a lookup or delete matches no row.
// Services decide what "absent" means for each flow: a missing refresh
// token is treated as revoked, a missing verification code as invalid.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert violates the unique email
// constraint on the users table.
var ErrEmailExists = errors.New("email already exists")
