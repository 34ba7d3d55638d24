package repository

import (
	"context"

	"github.com/smallbiznis/valora-notes/internal/domain"
)

// TenantRepository exposes tenant lookups and the plan transition.
type TenantRepository interface {
	GetBySlug(ctx context.Context, slug string) (domain.Tenant, error)
	UpdatePlan(ctx context.Context, slug string, plan domain.Plan) (domain.Tenant, error)
}

// UserRepository exposes persistence for users. Email lookups are
// case-sensitive; the stored email is the identity.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
}

// NoteRepository is the isolation backstop: every read, update, and
// delete takes the caller's tenant slug as a mandatory filter. There is
// no way to fetch a note by id alone, and a wrong-tenant id reports
// domain.ErrNotFound exactly like a nonexistent one.
type NoteRepository interface {
	Create(ctx context.Context, note domain.Note) (domain.Note, error)
	ListByTenant(ctx context.Context, tenantSlug string) ([]domain.Note, error)
	GetByID(ctx context.Context, id int64, tenantSlug string) (domain.Note, error)
	Update(ctx context.Context, id int64, tenantSlug, title, content string) (domain.Note, error)
	Delete(ctx context.Context, id int64, tenantSlug string) error
	CountByTenant(ctx context.Context, tenantSlug string) (int64, error)
}
