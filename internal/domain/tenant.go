package domain

import "time"

// Plan is a tenant's subscription level.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Tenant is an isolated organization-level partition. The slug is the
// sole isolation key: every user and note carries a tenant slug, and
// slug equality is the only boundary check performed anywhere.
type Tenant struct {
	Slug      string
	Name      string
	Plan      Plan
	CreatedAt time.Time
	UpdatedAt time.Time
}
