package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smallbiznis/valora-notes/internal/domain"
)

// In-memory repositories shared by the service tests.

type memoryTenantRepo struct {
	mu      sync.Mutex
	tenants map[string]domain.Tenant
}

func newMemoryTenantRepo(tenants ...domain.Tenant) *memoryTenantRepo {
	repo := &memoryTenantRepo{tenants: make(map[string]domain.Tenant)}
	for _, t := range tenants {
		repo.tenants[t.Slug] = t
	}
	return repo
}

func (m *memoryTenantRepo) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tenant, ok := m.tenants[slug]
	if !ok {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return tenant, nil
}

func (m *memoryTenantRepo) UpdatePlan(ctx context.Context, slug string, plan domain.Plan) (domain.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tenant, ok := m.tenants[slug]
	if !ok {
		return domain.Tenant{}, domain.ErrNotFound
	}
	tenant.Plan = plan
	tenant.UpdatedAt = time.Now()
	m.tenants[slug] = tenant
	return tenant, nil
}

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]domain.User)}
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.Email] = user
	return user, nil
}

type memoryNoteRepo struct {
	mu    sync.Mutex
	notes []domain.Note
	clock time.Time
}

func newMemoryNoteRepo() *memoryNoteRepo {
	return &memoryNoteRepo{clock: time.Now()}
}

func (m *memoryNoteRepo) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = m.clock.Add(time.Millisecond)
	note.CreatedAt = m.clock
	note.UpdatedAt = m.clock
	m.notes = append(m.notes, note)
	return note, nil
}

func (m *memoryNoteRepo) ListByTenant(ctx context.Context, tenantSlug string) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Note, 0)
	for _, n := range m.notes {
		if n.TenantSlug == tenantSlug {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memoryNoteRepo) GetByID(ctx context.Context, id int64, tenantSlug string) (domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notes {
		if n.ID == id && n.TenantSlug == tenantSlug {
			return n, nil
		}
	}
	return domain.Note{}, domain.ErrNotFound
}

func (m *memoryNoteRepo) Update(ctx context.Context, id int64, tenantSlug, title, content string) (domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notes {
		if n.ID == id && n.TenantSlug == tenantSlug {
			n.Title = title
			n.Content = content
			n.UpdatedAt = time.Now()
			m.notes[i] = n
			return n, nil
		}
	}
	return domain.Note{}, domain.ErrNotFound
}

func (m *memoryNoteRepo) Delete(ctx context.Context, id int64, tenantSlug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.notes {
		if n.ID == id && n.TenantSlug == tenantSlug {
			m.notes = append(m.notes[:i], m.notes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memoryNoteRepo) CountByTenant(ctx context.Context, tenantSlug string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.notes {
		if n.TenantSlug == tenantSlug {
			count++
		}
	}
	return count, nil
}
