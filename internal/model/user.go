package model

import "time"

// User status values as stored in the users.status column.
const (
	UserStatusActive   = "ACTIVE"
	UserStatusInactive = "INACTIVE"
	UserStatusBlocked  = "BLOCKED"
)

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (unique across non-deleted rows).
//  Name         – display name.
//  PhoneNumber  – contact phone number.
//  PasswordHash – bcrypt hashed password.
//  TOTPSecret   – optional second-factor secret (nullable).
//  Avatar       – optional avatar URL (nullable).
//  Status       – ACTIVE, INACTIVE or BLOCKED.
//  RoleID       – foreign key into the roles table.
//  CreatedByID  – user that created this row (nullable audit field).
//  UpdatedByID  – user that last updated this row (nullable audit field).
//  DeletedAt    – soft-delete marker; rows are never hard-deleted.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64     // users.id
	Email        string     // users.email
	Name         string     // users.name
	PhoneNumber  string     // users.phone_number
	PasswordHash string     // users.password_hash
	TOTPSecret   *string    // users.totp_secret (nullable)
	Avatar       *string    // users.avatar (nullable)
	Status       string     // users.status
	RoleID       uint64     // users.role_id (references roles.id)
	CreatedByID  *uint64    // users.created_by_id (nullable)
	UpdatedByID  *uint64    // users.updated_by_id (nullable)
	DeletedAt    *time.Time // users.deleted_at (nullable)
	CreatedAt    time.Time  // users.created_at
	UpdatedAt    time.Time  // users.updated_at
}
