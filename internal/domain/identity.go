package domain

// Identity is the verified, request-scoped authorization context
// reconstructed from a bearer token's signed claims. It is never
// persisted and carries the caller's role and tenant as of token
// issuance.
type Identity struct {
	UserID     int64
	Email      string
	Role       Role
	TenantSlug string
}

// Allowed reports whether the identity's role is in the given set.
// A nil identity is never allowed.
func Allowed(id *Identity, roles ...Role) bool {
	if id == nil {
		return false
	}
	for _, role := range roles {
		if id.Role == role {
			return true
		}
	}
	return false
}
