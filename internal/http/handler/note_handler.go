package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smallbiznis/valora-notes/internal/domain"
	"github.com/smallbiznis/valora-notes/internal/http/middleware"
	"github.com/smallbiznis/valora-notes/internal/service"
)

// NoteHandler exposes tenant-scoped note CRUD.
type NoteHandler struct {
	Notes *service.NoteService
}

// NewNoteHandler creates the handler set.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{Notes: notes}
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type noteResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	TenantSlug string `json:"tenant_slug"`
	CreatedBy  int64  `json:"created_by"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toNoteResponse(n domain.Note) noteResponse {
	return noteResponse{
		ID:         n.ID,
		Title:      n.Title,
		Content:    n.Content,
		TenantSlug: n.TenantSlug,
		CreatedBy:  n.CreatedBy,
		CreatedAt:  n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		UpdatedAt:  n.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

// Create stores a new note for the caller's tenant.
func (h *NoteHandler) Create(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid note payload."})
		return
	}

	note, err := h.Notes.Create(c.Request.Context(), caller, req.Title, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"note": toNoteResponse(note)})
}

// List returns the caller tenant's notes, newest first.
func (h *NoteHandler) List(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	notes, err := h.Notes.List(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{"notes": out})
}

// Get fetches one note by id within the caller's tenant.
func (h *NoteHandler) Get(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := noteID(c)
	if !ok {
		return
	}

	note, err := h.Notes.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": toNoteResponse(note)})
}

// Update rewrites a note's title and content.
func (h *NoteHandler) Update(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := noteID(c)
	if !ok {
		return
	}

	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "error_description": "Invalid note payload."})
		return
	}

	note, err := h.Notes.Update(c.Request.Context(), caller, id, req.Title, req.Content)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": toNoteResponse(note)})
}

// Delete removes a note.
func (h *NoteHandler) Delete(c *gin.Context) {
	caller, ok := middleware.GetIdentity(c)
	if !ok {
		respondUnauthenticated(c)
		return
	}

	id, ok := noteID(c)
	if !ok {
		return
	}

	if err := h.Notes.Delete(c.Request.Context(), caller, id); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// noteID parses the :id path parameter. A malformed id can never match
// a note, so it reports not-found like any other miss.
func noteID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "note not found"})
		return 0, false
	}
	return id, true
}

func respondUnauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "error_description": "Authentication required."})
}
