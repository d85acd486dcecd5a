// Package authkeys manages the internal API keys that callers present in
// the X-API-KEY header, the role attached to each key, and the bounded
// cache that keeps hot lookups off the database.
package authkeys

import "time"

// Roles assignable to an API key.
const (
	RoleGeneral      = "general"
	RoleLicenseAdmin = "license-admin"
	RoleAdmin        = "admin"
)

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	switch role {
	case RoleGeneral, RoleLicenseAdmin, RoleAdmin:
		return true
	}
	return false
}

// AuthKey is a stored API key record. The key string itself is an opaque
// generated identifier.
type AuthKey struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	Role        string    `json:"role"`
	CreatedBy   string    `json:"created_by"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
