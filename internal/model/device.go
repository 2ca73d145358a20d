package model

import "time"

// Device records the client context of one login session. A new row is
// created on every successful login (no deduplication by user-agent or
// IP), refreshed on token rotation and marked inactive on logout.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the device.
//  UserAgent  – user-agent string supplied at login.
//  IP         – client IP address supplied at login.
//  LastActive – timestamp of the most recent use.
//  IsActive   – cleared on logout.
//  CreatedAt  – timestamp of creation.
type Device struct {
	ID         uint64    // devices.id
	UserID     uint64    // devices.user_id
	UserAgent  string    // devices.user_agent
	IP         string    // devices.ip
	LastActive time.Time // devices.last_active
	IsActive   bool      // devices.is_active
	CreatedAt  time.Time // devices.created_at
}
