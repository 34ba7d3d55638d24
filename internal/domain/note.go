package domain

import "time"

// Note is a tenant-scoped document. Any member of the tenant may edit
// or delete any note in that tenant; creator ownership is recorded but
// not enforced.
type Note struct {
	ID         int64
	Title      string
	Content    string
	TenantSlug string
	CreatedBy  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
