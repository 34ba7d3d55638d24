package service_test

import (
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/quota"
	"github.com/smallbiznis/valora-notes/internal/service"
	"github.com/smallbiznis/valora-notes/internal/token"
)

type fixture struct {
	tenants *memoryTenantRepo
	users   *memoryUserRepo
	notes   *memoryNoteRepo
	codec   *token.Codec

	auth      *service.AuthService
	noteSvc   *service.NoteService
	tenantSvc *service.TenantService
}

func newFixture(t *testing.T, tenants ...domain.Tenant) *fixture {
	t.Helper()

	if len(tenants) == 0 {
		tenants = []domain.Tenant{
			{Slug: "acme", Name: "Acme", Plan: domain.PlanFree},
			{Slug: "globex", Name: "Globex", Plan: domain.PlanFree},
		}
	}

	tenantRepo := newMemoryTenantRepo(tenants...)
	userRepo := newMemoryUserRepo()
	noteRepo := newMemoryNoteRepo()

	codec, err := token.NewCodec([]byte("fixture-secret"), time.Hour)
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	logger := zap.NewNop()
	quotas := quota.NewManager(tenantRepo, noteRepo, nil, 0, logger)

	return &fixture{
		tenants:   tenantRepo,
		users:     userRepo,
		notes:     noteRepo,
		codec:     codec,
		auth:      service.NewAuthService(userRepo, tenantRepo, codec, node, logger),
		noteSvc:   service.NewNoteService(noteRepo, quotas, node, logger),
		tenantSvc: service.NewTenantService(tenantRepo, quotas, logger),
	}
}

func admin(tenant string) *domain.Identity {
	return &domain.Identity{UserID: 1, Email: "admin@" + tenant + ".test", Role: domain.RoleAdmin, TenantSlug: tenant}
}

func member(tenant string) *domain.Identity {
	return &domain.Identity{UserID: 2, Email: "user@" + tenant + ".test", Role: domain.RoleMember, TenantSlug: tenant}
}
