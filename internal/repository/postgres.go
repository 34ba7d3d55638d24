package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbiznis/valora-notes/internal/domain"
)

// Compile-time interface assertions.
var (
	_ TenantRepository = (*PostgresTenantRepo)(nil)
	_ UserRepository   = (*PostgresUserRepo)(nil)
	_ NoteRepository   = (*PostgresNoteRepo)(nil)
)

const uniqueViolation = "23505"

// PostgresTenantRepo implements TenantRepository.
type PostgresTenantRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTenantRepo(pool *pgxpool.Pool) *PostgresTenantRepo {
	return &PostgresTenantRepo{db: pool}
}

const getTenantSQL = `SELECT slug, name, plan, created_at, updated_at
FROM tenants
WHERE slug = $1`

func (r *PostgresTenantRepo) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRow(ctx, getTenantSQL, slug).Scan(&t.Slug, &t.Name, &t.Plan, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tenant{}, domain.ErrNotFound
		}
		return domain.Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

const updatePlanSQL = `UPDATE tenants
SET plan = $2, updated_at = NOW()
WHERE slug = $1
RETURNING slug, name, plan, created_at, updated_at`

func (r *PostgresTenantRepo) UpdatePlan(ctx context.Context, slug string, plan domain.Plan) (domain.Tenant, error) {
	var t domain.Tenant
	err := r.db.QueryRow(ctx, updatePlanSQL, slug, plan).Scan(&t.Slug, &t.Name, &t.Plan, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tenant{}, domain.ErrNotFound
		}
		return domain.Tenant{}, fmt.Errorf("update tenant plan: %w", err)
	}
	return t, nil
}

// PostgresUserRepo implements UserRepository.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

const getUserByEmailSQL = `SELECT id, email, password_hash, role, tenant_slug, created_at, updated_at
FROM users
WHERE email = $1`

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, getUserByEmailSQL, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.TenantSlug, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

const insertUserSQL = `INSERT INTO users (id, email, password_hash, role, tenant_slug)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, email, password_hash, role, tenant_slug, created_at, updated_at`

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, insertUserSQL,
		user.ID, user.Email, user.PasswordHash, user.Role, user.TenantSlug,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.TenantSlug, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// PostgresNoteRepo implements NoteRepository. Every statement filters
// on tenant_slug.
type PostgresNoteRepo struct {
	db *pgxpool.Pool
}

func NewPostgresNoteRepo(pool *pgxpool.Pool) *PostgresNoteRepo {
	return &PostgresNoteRepo{db: pool}
}

const insertNoteSQL = `INSERT INTO notes (id, title, content, tenant_slug, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, title, content, tenant_slug, created_by, created_at, updated_at`

func (r *PostgresNoteRepo) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRow(ctx, insertNoteSQL,
		note.ID, note.Title, note.Content, note.TenantSlug, note.CreatedBy,
	).Scan(&n.ID, &n.Title, &n.Content, &n.TenantSlug, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	return n, nil
}

const listNotesSQL = `SELECT id, title, content, tenant_slug, created_by, created_at, updated_at
FROM notes
WHERE tenant_slug = $1
ORDER BY created_at DESC`

func (r *PostgresNoteRepo) ListByTenant(ctx context.Context, tenantSlug string) ([]domain.Note, error) {
	rows, err := r.db.Query(ctx, listNotesSQL, tenantSlug)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]domain.Note, 0)
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.TenantSlug, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

const getNoteSQL = `SELECT id, title, content, tenant_slug, created_by, created_at, updated_at
FROM notes
WHERE id = $1 AND tenant_slug = $2`

func (r *PostgresNoteRepo) GetByID(ctx context.Context, id int64, tenantSlug string) (domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRow(ctx, getNoteSQL, id, tenantSlug).Scan(
		&n.ID, &n.Title, &n.Content, &n.TenantSlug, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, domain.ErrNotFound
		}
		return domain.Note{}, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

const updateNoteSQL = `UPDATE notes
SET title = $3, content = $4, updated_at = NOW()
WHERE id = $1 AND tenant_slug = $2
RETURNING id, title, content, tenant_slug, created_by, created_at, updated_at`

func (r *PostgresNoteRepo) Update(ctx context.Context, id int64, tenantSlug, title, content string) (domain.Note, error) {
	var n domain.Note
	err := r.db.QueryRow(ctx, updateNoteSQL, id, tenantSlug, title, content).Scan(
		&n.ID, &n.Title, &n.Content, &n.TenantSlug, &n.CreatedBy, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, domain.ErrNotFound
		}
		return domain.Note{}, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

const deleteNoteSQL = `DELETE FROM notes WHERE id = $1 AND tenant_slug = $2`

func (r *PostgresNoteRepo) Delete(ctx context.Context, id int64, tenantSlug string) error {
	tag, err := r.db.Exec(ctx, deleteNoteSQL, id, tenantSlug)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const countNotesSQL = `SELECT COUNT(*) FROM notes WHERE tenant_slug = $1`

func (r *PostgresNoteRepo) CountByTenant(ctx context.Context, tenantSlug string) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countNotesSQL, tenantSlug).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}
