package models

import (
	"time"
)

// User is a marketplace account. Username and email are unique; the unique
// indexes are the authoritative guard against duplicate registrations.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     Role   `gorm:"size:16;not null;default:customer" json:"role"`

	IsVerified            bool       `gorm:"not null;default:false;index" json:"is_verified"`
	VerificationCode      *string    `gorm:"size:6" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PendingVerification reports whether a verification code is outstanding.
// Code and expiry are always set or cleared together.
func (u *User) PendingVerification() bool {
	return u != nil && !u.IsVerified && u.VerificationCode != nil && u.VerificationExpiresAt != nil
}

// VerificationExpired reports whether the outstanding code expired before now.
func (u *User) VerificationExpired(now time.Time) bool {
	if u == nil || u.VerificationExpiresAt == nil {
		return true
	}
	return now.After(*u.VerificationExpiresAt)
}
