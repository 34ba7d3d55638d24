package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/valora-notes/internal/domain"
)

func TestUpgrade(t *testing.T) {
	f := newFixture(t)

	result, err := f.tenantSvc.Upgrade(context.Background(), admin("acme"), "acme")
	require.NoError(t, err)
	assert.False(t, result.AlreadyPro)
	assert.Equal(t, domain.PlanPro, result.Tenant.Plan)

	stored, err := f.tenants.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, domain.PlanPro, stored.Plan)
}

func TestUpgradeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.tenantSvc.Upgrade(ctx, admin("acme"), "acme")
	require.NoError(t, err)
	assert.False(t, first.AlreadyPro)

	second, err := f.tenantSvc.Upgrade(ctx, admin("acme"), "acme")
	require.NoError(t, err)
	assert.True(t, second.AlreadyPro)
	assert.Equal(t, domain.PlanPro, second.Tenant.Plan)
}

func TestUpgradeMemberForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.tenantSvc.Upgrade(context.Background(), member("acme"), "acme")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, getErr := f.tenants.GetBySlug(context.Background(), "acme")
	require.NoError(t, getErr)
	assert.Equal(t, domain.PlanFree, stored.Plan)
}

func TestUpgradeOtherTenantForbidden(t *testing.T) {
	f := newFixture(t)

	// An admin role does not reach across tenants.
	_, err := f.tenantSvc.Upgrade(context.Background(), admin("acme"), "globex")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, getErr := f.tenants.GetBySlug(context.Background(), "globex")
	require.NoError(t, getErr)
	assert.Equal(t, domain.PlanFree, stored.Plan)
}

func TestUpgradeUnknownTenant(t *testing.T) {
	f := newFixture(t)

	_, err := f.tenantSvc.Upgrade(context.Background(), admin("nowhere"), "nowhere")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpgradeRequiresIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.tenantSvc.Upgrade(context.Background(), nil, "acme")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
