package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/quota"
	"github.com/smallbiznis/valora-notes/internal/repository"
)

// NoteService implements tenant-scoped note operations. Every call
// takes the caller's identity and scopes the repository access by its
// tenant slug; a note in another tenant is indistinguishable from a
// missing one.
type NoteService struct {
	notes     repository.NoteRepository
	quota     *quota.Manager
	snowflake *snowflake.Node
	logger    *zap.Logger
	tracer    trace.Tracer
}

// NewNoteService wires dependencies.
func NewNoteService(notes repository.NoteRepository, quotas *quota.Manager, node *snowflake.Node, logger *zap.Logger) *NoteService {
	return &NoteService{
		notes:     notes,
		quota:     quotas,
		snowflake: node,
		logger:    logger,
		tracer:    otel.Tracer("github.com/smallbiznis/valora-notes/internal/service"),
	}
}

// Create stores a new note for the caller's tenant after the quota
// guard passes. Title is required; content is optional.
func (s *NoteService) Create(ctx context.Context, caller *domain.Identity, title, content string) (domain.Note, error) {
	ctx, span := s.startSpan(ctx, "NoteService.Create")
	defer span.End()

	if caller == nil {
		return domain.Note{}, errUnauthenticated("authentication required")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Note{}, errInvalidInput("title is required")
	}

	if err := s.quota.CanCreateNote(ctx, caller.TenantSlug); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.Note{}, errNotFound("tenant not found")
		case errors.Is(err, domain.ErrQuotaExceeded):
			return domain.Note{}, errQuotaExceeded("free plan limit reached")
		}
		span.RecordError(err)
		return domain.Note{}, err
	}

	note := domain.Note{
		ID:         s.snowflake.Generate().Int64(),
		Title:      title,
		Content:    content,
		TenantSlug: caller.TenantSlug,
		CreatedBy:  caller.UserID,
	}

	created, err := s.notes.Create(ctx, note)
	if err != nil {
		span.RecordError(err)
		return domain.Note{}, err
	}

	audit(s.logger, "note.created", "note_id", created.ID, "tenant", created.TenantSlug, "user_id", caller.UserID)
	return created, nil
}

// List returns the caller tenant's notes, newest first.
func (s *NoteService) List(ctx context.Context, caller *domain.Identity) ([]domain.Note, error) {
	ctx, span := s.startSpan(ctx, "NoteService.List")
	defer span.End()

	if caller == nil {
		return nil, errUnauthenticated("authentication required")
	}
	return s.notes.ListByTenant(ctx, caller.TenantSlug)
}

// Get fetches one note scoped to the caller's tenant.
func (s *NoteService) Get(ctx context.Context, caller *domain.Identity, id int64) (domain.Note, error) {
	ctx, span := s.startSpan(ctx, "NoteService.Get")
	defer span.End()

	if caller == nil {
		return domain.Note{}, errUnauthenticated("authentication required")
	}

	note, err := s.notes.GetByID(ctx, id, caller.TenantSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Note{}, errNotFound("note not found")
		}
		span.RecordError(err)
		return domain.Note{}, err
	}
	return note, nil
}

// Update rewrites title and content of a note in the caller's tenant.
func (s *NoteService) Update(ctx context.Context, caller *domain.Identity, id int64, title, content string) (domain.Note, error) {
	ctx, span := s.startSpan(ctx, "NoteService.Update")
	defer span.End()

	if caller == nil {
		return domain.Note{}, errUnauthenticated("authentication required")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Note{}, errInvalidInput("title is required")
	}

	note, err := s.notes.Update(ctx, id, caller.TenantSlug, title, content)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Note{}, errNotFound("note not found")
		}
		span.RecordError(err)
		return domain.Note{}, err
	}

	audit(s.logger, "note.updated", "note_id", note.ID, "tenant", note.TenantSlug, "user_id", caller.UserID)
	return note, nil
}

// Delete removes a note in the caller's tenant. Deleting an already
// deleted note reports not-found.
func (s *NoteService) Delete(ctx context.Context, caller *domain.Identity, id int64) error {
	ctx, span := s.startSpan(ctx, "NoteService.Delete")
	defer span.End()

	if caller == nil {
		return errUnauthenticated("authentication required")
	}

	if err := s.notes.Delete(ctx, id, caller.TenantSlug); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errNotFound("note not found")
		}
		span.RecordError(err)
		return err
	}

	audit(s.logger, "note.deleted", "note_id", id, "tenant", caller.TenantSlug, "user_id", caller.UserID)
	return nil
}

func (s *NoteService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}
