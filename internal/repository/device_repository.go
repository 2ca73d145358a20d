package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/ecommerce-auth/internal/model"
)

// DeviceRepo provides access to the devices table.
type DeviceRepo struct{ DB *sql.DB }

func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{DB: db} }

// Create inserts a device row for one login event and returns it. Each
// login gets its own row; prior devices for the same user are left
// untouched.
func (r *DeviceRepo) Create(ctx context.Context, userID uint64, userAgent, ip string) (model.Device, error) {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO devices (user_id, user_agent, ip, last_active, is_active) VALUES (?,?,?,?,1)",
		userID, userAgent, ip, now)
	if err != nil {
		return model.Device{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Device{}, err
	}
	return model.Device{
		ID:         uint64(id),
		UserID:     userID,
		UserAgent:  userAgent,
		IP:         ip,
		LastActive: now,
		IsActive:   true,
	}, nil
}

// Deactivate clears the is_active flag on a device at logout.
func (r *DeviceRepo) Deactivate(ctx context.Context, deviceID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET is_active=0, last_active=? WHERE id=?",
		time.Now().UTC(), deviceID)
	return err
}

// DeactivateAllForUser clears the is_active flag on every device owned
// by a user. Used when a password reset revokes all sessions.
func (r *DeviceRepo) DeactivateAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE devices SET is_active=0, last_active=? WHERE user_id=? AND is_active=1",
		time.Now().UTC(), userID)
	return err
}
