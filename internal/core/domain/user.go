package domain

import (
	"strings"
	"time"
)

// Role is the coarse capability tier of an account. Admin accounts are never
// created through self-service registration.
type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Status is the lifecycle state of an account.
type Status string

const (
	StatusPending   Status = "pending"   // registered, email unverified
	StatusAwaiting  Status = "awaiting"  // email verified, admin approval pending
	StatusActive    Status = "active"    // fully onboarded
	StatusSuspended Status = "suspended" // admin-imposed, reversible only by admin
)

// Permission keys. The last three are admin-only and can never be granted
// through a capability override.
const (
	PermRead         = "read"
	PermWrite        = "write"
	PermDelete       = "delete"
	PermDeleteAny    = "delete_any"
	PermManageUsers  = "manage_users"
	PermManageSystem = "manage_system"
)

// OverridableKeys is the closed allow-list for capability overrides. Any key
// outside this list is rejected at the write boundary.
var OverridableKeys = map[string]bool{
	PermRead:   true,
	PermWrite:  true,
	PermDelete: true,
}

// Permissions maps permission keys to grants.
type Permissions map[string]bool

// Has reports whether the permission is granted.
func (p Permissions) Has(key string) bool {
	return p[key]
}

// DefaultPermissions returns the role-default permission set.
func DefaultPermissions(role Role) Permissions {
	switch role {
	case RoleAdmin:
		return Permissions{
			PermRead: true, PermWrite: true, PermDelete: true,
			PermDeleteAny: true, PermManageUsers: true, PermManageSystem: true,
		}
	case RoleUser:
		return Permissions{PermRead: true, PermWrite: true, PermDelete: true}
	default:
		return Permissions{PermRead: true}
	}
}

// MaxRecentIPs caps the deduplicated login IP history kept per account.
const MaxRecentIPs = 10

// User is the credential-store record for an account. The primary key is the
// subject id issued by the external identity authority; the same record is
// duplicated across the document store and the hot key-value store, with the
// key-value store authoritative for permission decisions.
type User struct {
	ID             string      `json:"id" bson:"_id"`
	Email          string      `json:"email" bson:"email"`
	DisplayName    string      `json:"display_name" bson:"display_name"`
	Role           Role        `json:"role" bson:"role"`
	Status         Status      `json:"status" bson:"status"`
	EmailVerified  bool        `json:"email_verified" bson:"email_verified"`
	AdminApproved  bool        `json:"admin_approved" bson:"admin_approved"`
	Permissions    Permissions `json:"permissions" bson:"permissions"`
	LoginCount     int         `json:"login_count" bson:"login_count"`
	RecentIPs      []string    `json:"-" bson:"recent_ips"`
	RegistrationIP string      `json:"-" bson:"registration_ip"`
	LastLoginAt    time.Time   `json:"last_login_at,omitempty" bson:"last_login_at"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
}

// RecordLogin updates the login bookkeeping: counter, timestamp, and the
// deduplicated recent-IP history capped at MaxRecentIPs (most recent first).
func (u *User) RecordLogin(ip string, at time.Time) {
	u.LoginCount++
	u.LastLoginAt = at

	if ip == "" {
		return
	}
	ips := make([]string, 0, len(u.RecentIPs)+1)
	ips = append(ips, ip)
	for _, known := range u.RecentIPs {
		if known == ip {
			continue
		}
		ips = append(ips, known)
	}
	if len(ips) > MaxRecentIPs {
		ips = ips[:MaxRecentIPs]
	}
	u.RecentIPs = ips
}

// NextStatus computes the lifecycle state implied by the verification and
// approval flags. Suspension is admin-imposed and never computed.
func NextStatus(emailVerified, adminApproved bool) Status {
	switch {
	case emailVerified && adminApproved:
		return StatusActive
	case emailVerified:
		return StatusAwaiting
	default:
		return StatusPending
	}
}

// NormalizeEmail case-folds and trims an email address so uniqueness checks
// and lookups agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
