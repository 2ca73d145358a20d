package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// UserRepo provides access to the users table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,name,phone_number,password_hash,totp_secret,avatar,status,role_id,created_by_id,updated_by_id,deleted_at,created_at,updated_at"

// Create inserts a user with an already-hashed password and returns the
// stored row. A duplicate email maps to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, name, phone_number, password_hash, avatar, status, role_id) VALUES (?,?,?,?,?,?,?)",
		u.Email, u.Name, u.PhoneNumber, u.PasswordHash, u.Avatar, u.Status, u.RoleID)
	if err != nil {
		// MySQL error 1062: duplicate entry for a unique key.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a non-deleted user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted_at IS NULL LIMIT 1", email)
	return scanUser(row)
}

// GetByID fetches a non-deleted user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanUser(row)
}

// GetByEmailWithRole fetches a user joined with its role in one round
// trip, as the login path needs both.
func (r *UserRepo) GetByEmailWithRole(ctx context.Context, email string) (model.User, model.Role, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var (
		u    model.User
		role model.Role
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT u.id,u.email,u.name,u.phone_number,u.password_hash,u.totp_secret,u.avatar,u.status,
		        u.role_id,u.created_by_id,u.updated_by_id,u.deleted_at,u.created_at,u.updated_at,
		        r.id,r.name
		 FROM users u JOIN roles r ON r.id=u.role_id
		 WHERE u.email=? AND u.deleted_at IS NULL LIMIT 1`,
		email).Scan(&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.PasswordHash, &u.TOTPSecret,
		&u.Avatar, &u.Status, &u.RoleID, &u.CreatedByID, &u.UpdatedByID, &u.DeletedAt,
		&u.CreatedAt, &u.UpdatedAt, &role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return model.User{}, model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, model.Role{}, err
	}
	return u, role, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=? AND deleted_at IS NULL",
		passwordHash, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PhoneNumber, &u.PasswordHash, &u.TOTPSecret,
		&u.Avatar, &u.Status, &u.RoleID, &u.CreatedByID, &u.UpdatedByID, &u.DeletedAt,
		&u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}
