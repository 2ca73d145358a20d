package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// TokenRepo persists refresh tokens. The signed token string is the
// lookup key and is stored verbatim; a row that cannot be found is
// indistinguishable from one that was never issued.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a refresh token row.
func (r *TokenRepo) Create(ctx context.Context, t model.RefreshToken) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, device_id, expires_at) VALUES (?,?,?,?)",
		t.Token, t.UserID, t.DeviceID, t.ExpiresAt)
	return err
}

// GetWithUserRole fetches a refresh token row joined through its user
// and role. The refresh path needs all three to mint the replacement
// pair without extra round trips.
func (r *TokenRepo) GetWithUserRole(ctx context.Context, token string) (model.RefreshToken, model.User, model.Role, error) {
	var (
		t    model.RefreshToken
		u    model.User
		role model.Role
	)
	err := r.DB.QueryRowContext(ctx,
		`SELECT t.id,t.token,t.user_id,t.device_id,t.expires_at,t.created_at,
		        u.id,u.email,u.name,u.status,u.role_id,
		        r.id,r.name
		 FROM refresh_tokens t
		 JOIN users u ON u.id=t.user_id
		 JOIN roles r ON r.id=u.role_id
		 WHERE t.token=? LIMIT 1`,
		token).Scan(&t.ID, &t.Token, &t.UserID, &t.DeviceID, &t.ExpiresAt, &t.CreatedAt,
		&u.ID, &u.Email, &u.Name, &u.Status, &u.RoleID, &role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return model.RefreshToken{}, model.User{}, model.Role{}, ErrNotFound
	}
	if err != nil {
		return model.RefreshToken{}, model.User{}, model.Role{}, err
	}
	return t, u, role, nil
}

// Rotate atomically replaces oldToken with its successor: the bound
// device's client context is refreshed, the old row is deleted and the
// new row inserted in a single transaction. If the old row is already
// gone (rotated or logged out by a concurrent request) the transaction
// rolls back and ErrNotFound is returned, so exactly one caller wins a
// rotation race.
func (r *TokenRepo) Rotate(ctx context.Context, oldToken string, next model.RefreshToken, userAgent, ip string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE devices SET user_agent=?, ip=?, last_active=? WHERE id=?",
		userAgent, ip, time.Now().UTC(), next.DeviceID); err != nil {
		return fmt.Errorf("update device: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", oldToken)
	if err != nil {
		return fmt.Errorf("delete old token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO refresh_tokens (token, user_id, device_id, expires_at) VALUES (?,?,?,?)",
		next.Token, next.UserID, next.DeviceID, next.ExpiresAt); err != nil {
		return fmt.Errorf("insert new token: %w", err)
	}

	return tx.Commit()
}

// Delete removes a refresh token row. ErrNotFound signals the row was
// already gone, which logout reports as revoked.
func (r *TokenRepo) Delete(ctx context.Context, token string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", token)
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

// DeleteAllForUser removes every refresh token owned by a user. Used
// when a password reset revokes all sessions.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
