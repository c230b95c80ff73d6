package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	require.Equal(t, RoleVendor, ParseRole("  Vendor "))
	require.True(t, ParseRole("customer").Valid())
	require.True(t, RoleAdmin.Valid())
	require.False(t, ParseRole("superuser").Valid())
}

func TestRoleSelfRegistrable(t *testing.T) {
	require.True(t, RoleCustomer.SelfRegistrable())
	require.True(t, RoleVendor.SelfRegistrable())
	require.False(t, RoleAdmin.SelfRegistrable())
	require.False(t, Role("").SelfRegistrable())
}

func TestUserPendingVerification(t *testing.T) {
	code := "004211"
	expires := time.Date(2024, 3, 1, 12, 15, 0, 0, time.UTC)

	user := &User{VerificationCode: &code, VerificationExpiresAt: &expires}
	require.True(t, user.PendingVerification())

	user.IsVerified = true
	require.False(t, user.PendingVerification())

	var nilUser *User
	require.False(t, nilUser.PendingVerification())
}

func TestUserVerificationExpired(t *testing.T) {
	expires := time.Date(2024, 3, 1, 12, 15, 0, 0, time.UTC)
	user := &User{VerificationExpiresAt: &expires}

	require.False(t, user.VerificationExpired(expires))
	require.False(t, user.VerificationExpired(expires.Add(-time.Minute)))
	require.True(t, user.VerificationExpired(expires.Add(time.Second)))
	require.True(t, (&User{}).VerificationExpired(expires))
}

func TestAuditLogBeforeCreateGeneratesID(t *testing.T) {
	var entry AuditLog
	require.NoError(t, entry.BeforeCreate(nil))
	require.NotEmpty(t, entry.ID)

	existing := AuditLog{ID: "fixed"}
	require.NoError(t, existing.BeforeCreate(nil))
	require.Equal(t, "fixed", existing.ID)
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.False(t, CacheEntry{}.Expired(now))
	require.False(t, CacheEntry{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, CacheEntry{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}
