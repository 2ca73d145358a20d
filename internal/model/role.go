package model

// Role names seeded as reference data. The resolver treats these as
// static for the process lifetime.
const (
	RoleClient = "Client"
	RoleAdmin  = "Admin"
)

// Role represents a row in the `roles` table. It maps a numeric ID to a
// unique role name. Users reference this table via their RoleID field.
type Role struct {
	ID   uint64 // roles.id
	Name string // roles.name
}
