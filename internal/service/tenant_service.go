package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/quota"
	"github.com/smallbiznis/valora-notes/internal/repository"
)

// TenantService owns the free→pro plan transition.
type TenantService struct {
	tenants repository.TenantRepository
	quota   *quota.Manager
	logger  *zap.Logger
	tracer  trace.Tracer
}

// NewTenantService wires dependencies.
func NewTenantService(tenants repository.TenantRepository, quotas *quota.Manager, logger *zap.Logger) *TenantService {
	return &TenantService{
		tenants: tenants,
		quota:   quotas,
		logger:  logger,
		tracer:  otel.Tracer("github.com/smallbiznis/valora-notes/internal/service"),
	}
}

// UpgradeResult reports the tenant after the transition. AlreadyPro is
// set when the call was an idempotent no-op.
type UpgradeResult struct {
	Tenant     domain.Tenant
	AlreadyPro bool
}

// Upgrade moves a tenant from free to pro. Only an admin of that exact
// tenant may upgrade it; the role and tenant checks are independent so
// the failure outcomes stay distinguishable. Upgrading a pro tenant is
// a no-op success, which also makes racing upgrade calls harmless.
func (s *TenantService) Upgrade(ctx context.Context, caller *domain.Identity, slug string) (UpgradeResult, error) {
	ctx, span := s.startSpan(ctx, "TenantService.Upgrade")
	defer span.End()

	if caller == nil {
		return UpgradeResult{}, errUnauthenticated("authentication required")
	}
	if !domain.Allowed(caller, domain.RoleAdmin) {
		return UpgradeResult{}, errForbidden("only admins can upgrade")
	}
	if caller.TenantSlug != slug {
		return UpgradeResult{}, errForbidden("cannot upgrade another tenant")
	}

	tenant, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return UpgradeResult{}, errNotFound("tenant not found")
		}
		span.RecordError(err)
		return UpgradeResult{}, err
	}

	if tenant.Plan == domain.PlanPro {
		return UpgradeResult{Tenant: tenant, AlreadyPro: true}, nil
	}

	updated, err := s.tenants.UpdatePlan(ctx, slug, domain.PlanPro)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return UpgradeResult{}, errNotFound("tenant not found")
		}
		span.RecordError(err)
		return UpgradeResult{}, err
	}

	s.quota.InvalidatePlan(ctx, slug)
	audit(s.logger, "tenant.upgraded", "tenant", slug, "user_id", caller.UserID)
	return UpgradeResult{Tenant: updated}, nil
}

func (s *TenantService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}
