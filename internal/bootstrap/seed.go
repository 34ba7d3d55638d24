package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/config"
	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/password"
	"github.com/smallbiznis/valora-notes/internal/repository"
)

const insertTenantSQL = `INSERT INTO tenants (slug, name, plan)
VALUES ($1, $2, $3)
ON CONFLICT (slug) DO NOTHING`

// EnsureTenants seeds the configured tenants on startup, and for
// dev/e2e optionally an admin user per tenant when SEED_ADMIN_PASSWORD
// is set. Tenants are created out-of-band in this service; this is the
// only place they come from.
func EnsureTenants(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, pool *pgxpool.Pool, node *snowflake.Node, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureTenants(ctx, cfg, users, pool, node, logger)
		},
	})
}

func ensureTenants(ctx context.Context, cfg config.Config, users repository.UserRepository, pool *pgxpool.Pool, node *snowflake.Node, logger *zap.Logger) error {
	for _, entry := range cfg.SeedTenants {
		slug, name, err := parseTenantEntry(entry)
		if err != nil {
			return err
		}

		if _, err := pool.Exec(ctx, insertTenantSQL, slug, name, domain.PlanFree); err != nil {
			return fmt.Errorf("seed tenant %q: %w", slug, err)
		}

		if cfg.SeedAdminPassword != "" {
			if err := ensureAdmin(ctx, cfg, users, node, slug, logger); err != nil {
				return err
			}
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, cfg config.Config, users repository.UserRepository, node *snowflake.Node, slug string, logger *zap.Logger) error {
	email := "admin@" + slug + ".test"

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("seed admin lookup: %w", err)
	}

	hashed, err := password.Hash(cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin hash password: %w", err)
	}

	created, err := users.Create(ctx, domain.User{
		ID:           node.Generate().Int64(),
		Email:        email,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		TenantSlug:   slug,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("seed admin create: %w", err)
	}

	if logger != nil {
		logger.Info("seed admin user created",
			zap.String("email", created.Email),
			zap.String("tenant", slug),
			zap.Int64("user_id", created.ID),
		)
	}
	return nil
}

func parseTenantEntry(entry string) (slug, name string, err error) {
	parts := strings.SplitN(entry, ":", 2)
	slug = strings.ToLower(strings.TrimSpace(parts[0]))
	if slug == "" {
		return "", "", fmt.Errorf("seed tenant entry %q: empty slug", entry)
	}
	name = slug
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		name = strings.TrimSpace(parts[1])
	}
	return slug, name, nil
}
