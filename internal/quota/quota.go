package quota

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/repository"
)

// FreePlanNoteLimit is the hard ceiling on notes for free-plan tenants.
const FreePlanNoteLimit = 3

// PlanCache is an optional read-through cache for tenant plans. A miss
// is (plan, false, nil); cache failures are treated as misses.
type PlanCache interface {
	Get(ctx context.Context, slug string) (domain.Plan, bool, error)
	Set(ctx context.Context, slug string, plan domain.Plan, ttl time.Duration) error
	Invalidate(ctx context.Context, slug string) error
}

// Manager enforces the per-tenant note quota.
type Manager struct {
	tenants  repository.TenantRepository
	notes    repository.NoteRepository
	plans    PlanCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewManager wires the quota manager. cache may be nil.
func NewManager(tenants repository.TenantRepository, notes repository.NoteRepository, cache PlanCache, cacheTTL time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.L()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Manager{tenants: tenants, notes: notes, plans: cache, cacheTTL: cacheTTL, logger: logger}
}

// CanCreateNote reports whether the tenant may create another note.
// Pro tenants are unlimited; free tenants are capped at
// FreePlanNoteLimit. An unknown tenant yields domain.ErrNotFound and a
// full tenant yields domain.ErrQuotaExceeded.
//
// The count and the subsequent insert are not one atomic step, so two
// concurrent creates at the boundary can both pass. The store keeps
// per-row atomicity only; the transient over-quota is tolerated.
func (m *Manager) CanCreateNote(ctx context.Context, tenantSlug string) error {
	plan, err := m.Plan(ctx, tenantSlug)
	if err != nil {
		return err
	}
	if plan == domain.PlanPro {
		return nil
	}

	count, err := m.notes.CountByTenant(ctx, tenantSlug)
	if err != nil {
		return fmt.Errorf("count tenant notes: %w", err)
	}
	if count >= FreePlanNoteLimit {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Plan returns the tenant's current plan, consulting the cache first.
func (m *Manager) Plan(ctx context.Context, tenantSlug string) (domain.Plan, error) {
	if m.plans != nil {
		plan, ok, err := m.plans.Get(ctx, tenantSlug)
		if err != nil {
			m.logger.Warn("plan cache read failed", zap.String("tenant", tenantSlug), zap.Error(err))
		} else if ok {
			return plan, nil
		}
	}

	tenant, err := m.tenants.GetBySlug(ctx, tenantSlug)
	if err != nil {
		return "", err
	}

	if m.plans != nil {
		if err := m.plans.Set(ctx, tenantSlug, tenant.Plan, m.cacheTTL); err != nil {
			m.logger.Warn("plan cache write failed", zap.String("tenant", tenantSlug), zap.Error(err))
		}
	}
	return tenant.Plan, nil
}

// InvalidatePlan drops the cached plan after an upgrade so the next
// quota check sees the new plan immediately.
func (m *Manager) InvalidatePlan(ctx context.Context, tenantSlug string) {
	if m.plans == nil {
		return
	}
	if err := m.plans.Invalidate(ctx, tenantSlug); err != nil {
		m.logger.Warn("plan cache invalidate failed", zap.String("tenant", tenantSlug), zap.Error(err))
	}
}
