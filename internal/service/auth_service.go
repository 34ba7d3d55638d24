package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/domain"
	pw "github.com/smallbiznis/valora-notes/internal/password"
	"github.com/smallbiznis/valora-notes/internal/repository"
	"github.com/smallbiznis/valora-notes/internal/token"
)

// AuthService handles signup and login.
type AuthService struct {
	users     repository.UserRepository
	tenants   repository.TenantRepository
	codec     *token.Codec
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, tenants repository.TenantRepository, codec *token.Codec, node *snowflake.Node, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tenants:   tenants,
		codec:     codec,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/smallbiznis/valora-notes/internal/service"),
	}
}

// SignupInput carries the signup form fields.
type SignupInput struct {
	Email      string
	Password   string
	TenantSlug string
}

// Signup registers a member user under an existing tenant. Emails are
// stored and matched exactly as given.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (UserSummary, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Signup")
	defer span.End()

	email := strings.TrimSpace(in.Email)
	slug := strings.TrimSpace(in.TenantSlug)
	if email == "" || in.Password == "" || slug == "" {
		return UserSummary{}, errInvalidInput("email, password and tenant_slug are required")
	}

	if _, err := s.tenants.GetBySlug(ctx, slug); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return UserSummary{}, errNotFound("tenant not found")
		}
		span.RecordError(err)
		return UserSummary{}, err
	}

	hash, err := pw.Hash(in.Password)
	if err != nil {
		span.RecordError(err)
		return UserSummary{}, err
	}

	user := domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleMember,
		TenantSlug:   slug,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return UserSummary{}, errConflict("user already exists")
		}
		span.RecordError(err)
		return UserSummary{}, err
	}

	s.audit("user.signup", "user_id", created.ID, "tenant", created.TenantSlug)
	return summarize(created), nil
}

// Login verifies credentials and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, errUnauthenticated("wrong email or password")
	}

	if !pw.Verify(password, user.PasswordHash) {
		return LoginResult{}, errUnauthenticated("wrong email or password")
	}

	signed, err := s.codec.Issue(domain.Identity{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		TenantSlug: user.TenantSlug,
	})
	if err != nil {
		span.RecordError(err)
		return LoginResult{}, err
	}

	s.audit("user.login", "user_id", user.ID, "tenant", user.TenantSlug)
	return LoginResult{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int(s.codec.TTL().Seconds()),
		User:      summarize(user),
	}, nil
}

func summarize(user domain.User) UserSummary {
	return UserSummary{
		ID:         user.ID,
		Email:      user.Email,
		Role:       string(user.Role),
		TenantSlug: user.TenantSlug,
	}
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	audit(s.log(), event, attrs...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func audit(logger *zap.Logger, event string, attrs ...any) {
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}
