package service

// UserSummary is the lightweight user payload returned to clients.
// The password hash never leaves the service layer.
type UserSummary struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantSlug string `json:"tenant_slug"`
}

// LoginResult bundles the signed bearer token with the user summary.
type LoginResult struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
	User      UserSummary `json:"user"`
}
