package model

import (
	"time"

	"github.com/aarondl/null/v8"
)

// User is the local account a Google identity is mapped to by e-mail.
type User struct {
	ID             int64       `json:"id"`
	Email          string      `json:"email"`
	Login          string      `json:"login"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	RoleID         int64       `json:"role_id"`
	RoleName       string      `json:"role_name"`
	ProfileID      null.Int64  `json:"profile_id"`
	ProfileName    null.String `json:"profile_name"`
	HospitalID     null.Int64  `json:"hospital_id"`
	IsActive       bool        `json:"is_active"`
	IsLocked       bool        `json:"-"`
	LockedUntil    null.Time   `json:"-"`
	FailedAttempts int         `json:"-"`
	LastLoginAt    null.Time   `json:"last_login_at"`
	CreatedAt      time.Time   `json:"created_at"`
}

// LockedAt reports whether the account is locked at the given instant, either permanently or by
// a lockout window that has not yet expired.
func (u *User) LockedAt(now time.Time) bool {
	if u.IsLocked {
		return true
	}
	return u.LockedUntil.Valid && u.LockedUntil.Time.After(now)
}
