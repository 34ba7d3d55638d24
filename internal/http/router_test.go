package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/config"
	"github.com/smallbiznis/valora-notes/internal/domain"
	httptransport "github.com/smallbiznis/valora-notes/internal/http"
	"github.com/smallbiznis/valora-notes/internal/http/handler"
	httpmiddleware "github.com/smallbiznis/valora-notes/internal/http/middleware"
	"github.com/smallbiznis/valora-notes/internal/quota"
	"github.com/smallbiznis/valora-notes/internal/service"
	"github.com/smallbiznis/valora-notes/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	codec  *token.Codec
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tenants := &stubTenantStore{tenants: map[string]domain.Tenant{
		"acme":   {Slug: "acme", Name: "Acme", Plan: domain.PlanFree},
		"globex": {Slug: "globex", Name: "Globex", Plan: domain.PlanFree},
	}}
	users := &stubUserStore{users: map[string]domain.User{}}
	notes := &stubNoteStore{}

	codec, err := token.NewCodec([]byte("router-test-secret"), time.Hour)
	require.NoError(t, err)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	logger := zap.NewNop()
	quotas := quota.NewManager(tenants, notes, nil, 0, logger)

	authSvc := service.NewAuthService(users, tenants, codec, node, logger)
	noteSvc := service.NewNoteService(notes, quotas, node, logger)
	tenantSvc := service.NewTenantService(tenants, quotas, logger)

	cfg := config.Config{
		ServiceName:        "valora-notes-test",
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Authorization", "Content-Type"},
	}

	router := httptransport.NewRouter(
		cfg,
		handler.NewAuthHandler(authSvc),
		handler.NewNoteHandler(noteSvc),
		handler.NewTenantHandler(tenantSvc),
		&httpmiddleware.Auth{Codec: codec},
		nil,
	)
	return &testServer{router: router, codec: codec}
}

func (s *testServer) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// decode parses a JSON body keeping numbers as json.Number so snowflake
// ids survive the round trip without float truncation.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(rec.Body.Bytes()))
	dec.UseNumber()
	out := map[string]any{}
	require.NoError(t, dec.Decode(&out))
	return out
}

func (s *testServer) signupAndLogin(t *testing.T, email, tenantSlug string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/auth/signup", "", gin.H{
		"email": email, "password": "password123", "tenant_slug": tenantSlug,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	tok, _ := body["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func (s *testServer) adminToken(t *testing.T, tenantSlug string) string {
	t.Helper()
	tok, err := s.codec.Issue(domain.Identity{
		UserID: 99, Email: "admin@" + tenantSlug + ".test", Role: domain.RoleAdmin, TenantSlug: tenantSlug,
	})
	require.NoError(t, err)
	return tok
}

func TestSignupLoginCreateAndIsolation(t *testing.T) {
	s := newTestServer(t)

	acmeToken := s.signupAndLogin(t, "a@acme.test", "acme")

	rec := s.do(t, http.MethodPost, "/notes", acmeToken, gin.H{"title": "t1", "content": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["note"].(map[string]any)
	noteID := created["id"].(json.Number).String()
	assert.Equal(t, "acme", created["tenant_slug"])

	rec = s.do(t, http.MethodGet, "/notes", acmeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["notes"], 1)

	// The other tenant sees nothing and cannot address the note by id.
	globexToken := s.signupAndLogin(t, "b@globex.test", "globex")

	rec = s.do(t, http.MethodGet, "/notes", globexToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["notes"])

	rec = s.do(t, http.MethodGet, "/notes/"+noteID, globexToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/notes/"+noteID, globexToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		bearer string
		header string
	}{
		{name: "no header"},
		{name: "wrong scheme", header: "Basic abc123"},
		{name: "empty bearer", header: "Bearer "},
		{name: "garbage token", bearer: "not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/notes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			} else if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decode(t, rec)["error"])
		})
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	s.signupAndLogin(t, "a@acme.test", "acme")

	wrongPassword := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "a@acme.test", "password": "nope"})
	unknownEmail := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "ghost@acme.test", "password": "password123"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestQuotaAndUpgradeFlow(t *testing.T) {
	s := newTestServer(t)
	memberToken := s.signupAndLogin(t, "a@acme.test", "acme")

	for i := 0; i < quota.FreePlanNoteLimit; i++ {
		rec := s.do(t, http.MethodPost, "/notes", memberToken, gin.H{"title": fmt.Sprintf("note %d", i)})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodPost, "/notes", memberToken, gin.H{"title": "over the limit"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "quota_exceeded", decode(t, rec)["error"])

	// Members cannot upgrade their own tenant.
	rec = s.do(t, http.MethodPost, "/tenants/acme/upgrade", memberToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	adminToken := s.adminToken(t, "acme")

	// Admins cannot upgrade a foreign tenant.
	rec = s.do(t, http.MethodPost, "/tenants/globex/upgrade", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/tenants/acme/upgrade", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/tenants/acme/upgrade", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tenant already upgraded", decode(t, rec)["message"])

	rec = s.do(t, http.MethodPost, "/notes", memberToken, gin.H{"title": "post upgrade"})
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestMalformedNoteID(t *testing.T) {
	s := newTestServer(t)
	tok := s.signupAndLogin(t, "a@acme.test", "acme")

	rec := s.do(t, http.MethodGet, "/notes/not-a-number", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode(t, rec)["error"])
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Minimal in-memory stores backing the router tests.

type stubTenantStore struct {
	mu      sync.Mutex
	tenants map[string]domain.Tenant
}

func (s *stubTenantStore) GetBySlug(ctx context.Context, slug string) (domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[slug]
	if !ok {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return tenant, nil
}

func (s *stubTenantStore) UpdatePlan(ctx context.Context, slug string, plan domain.Plan) (domain.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tenant, ok := s.tenants[slug]
	if !ok {
		return domain.Tenant{}, domain.ErrNotFound
	}
	tenant.Plan = plan
	s.tenants[slug] = tenant
	return tenant, nil
}

type stubUserStore struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func (s *stubUserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) Create(ctx context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return domain.User{}, domain.ErrDuplicateEmail
	}
	s.users[user.Email] = user
	return user, nil
}

type stubNoteStore struct {
	mu    sync.Mutex
	notes []domain.Note
}

func (s *stubNoteStore) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note.CreatedAt = time.Now().Add(time.Duration(len(s.notes)) * time.Millisecond)
	note.UpdatedAt = note.CreatedAt
	s.notes = append(s.notes, note)
	return note, nil
}

func (s *stubNoteStore) ListByTenant(ctx context.Context, tenantSlug string) ([]domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Note, 0)
	for i := len(s.notes) - 1; i >= 0; i-- {
		if s.notes[i].TenantSlug == tenantSlug {
			out = append(out, s.notes[i])
		}
	}
	return out, nil
}

func (s *stubNoteStore) GetByID(ctx context.Context, id int64, tenantSlug string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.ID == id && n.TenantSlug == tenantSlug {
			return n, nil
		}
	}
	return domain.Note{}, domain.ErrNotFound
}

func (s *stubNoteStore) Update(ctx context.Context, id int64, tenantSlug, title, content string) (domain.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id && n.TenantSlug == tenantSlug {
			n.Title = title
			n.Content = content
			n.UpdatedAt = time.Now()
			s.notes[i] = n
			return n, nil
		}
	}
	return domain.Note{}, domain.ErrNotFound
}

func (s *stubNoteStore) Delete(ctx context.Context, id int64, tenantSlug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notes {
		if n.ID == id && n.TenantSlug == tenantSlug {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *stubNoteStore) CountByTenant(ctx context.Context, tenantSlug string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, n := range s.notes {
		if n.TenantSlug == tenantSlug {
			count++
		}
	}
	return count, nil
}
