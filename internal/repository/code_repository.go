package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// CodeRepo persists one-time verification codes. The email column is
// unique so at most one live code exists per address.
type CodeRepo struct{ DB *sql.DB }

func NewCodeRepo(db *sql.DB) *CodeRepo { return &CodeRepo{DB: db} }

// Upsert creates the code row for an email or, if one already exists,
// overwrites its code, purpose and expiry. The previous code stops
// working the moment a new one is requested.
func (r *CodeRepo) Upsert(ctx context.Context, c model.VerificationCode) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO verification_codes (email, code, purpose, expires_at)
		 VALUES (?,?,?,?)
		 ON DUPLICATE KEY UPDATE code=VALUES(code), purpose=VALUES(purpose), expires_at=VALUES(expires_at)`,
		c.Email, c.Code, c.Purpose, c.ExpiresAt)
	return err
}

// Find looks up the row matching email, code and purpose exactly. Any
// mismatch on any of the three fields yields ErrNotFound.
func (r *CodeRepo) Find(ctx context.Context, email, code, purpose string) (model.VerificationCode, error) {
	var c model.VerificationCode
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,code,purpose,expires_at,created_at FROM verification_codes WHERE email=? AND code=? AND purpose=? LIMIT 1",
		email, code, purpose).Scan(&c.ID, &c.Email, &c.Code, &c.Purpose, &c.ExpiresAt, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return model.VerificationCode{}, ErrNotFound
	}
	if err != nil {
		return model.VerificationCode{}, err
	}
	return c, nil
}

// Delete removes the row. Deleting an already-consumed code is not an
// error; the flow treats absence after a successful validate as
// expected.
func (r *CodeRepo) Delete(ctx context.Context, email, code, purpose string) error {
	_, err := r.DB.ExecContext(ctx,
		"DELETE FROM verification_codes WHERE email=? AND code=? AND purpose=?",
		email, code, purpose)
	return err
}
