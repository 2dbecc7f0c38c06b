package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
)

// Note listing scopes accepted by GET /api/books/:id/notes.
const (
	NoteScopeMine = "mine"
	NoteScopeAll  = "all"
)

type NotesController struct {
	notes *catalog.NotesService
}

func NewNotesController(notes *catalog.NotesService) *NotesController {
	return &NotesController{notes: notes}
}

type NoteRequest struct {
	// Length and blank checks live in the notes service.
	Content string `json:"content"`
}

// ListNotes handles GET /api/books/:id/notes. Only the caller's own notes
// are returned unless scope=all is requested.
func (nc *NotesController) ListNotes(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var owner *uint
	switch scope := c.DefaultQuery("scope", NoteScopeMine); scope {
	case NoteScopeMine:
		userID := auth.GetUserID(c)
		owner = &userID
	case NoteScopeAll:
	default:
		respondBadRequest(c, "scope must be mine or all")
		return
	}

	notes, err := nc.notes.ListNotes(c.Request.Context(), bookID, owner)
	if err != nil {
		respondDomainError(c, err, "list notes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes, "count": len(notes)})
}

// CreateNote handles POST /api/books/:id/notes
func (nc *NotesController) CreateNote(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	note, err := nc.notes.CreateNote(c.Request.Context(), bookID, auth.GetUserID(c), req.Content)
	if err != nil {
		respondDomainError(c, err, "create note")
		return
	}

	c.JSON(http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/:id
func (nc *NotesController) UpdateNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	note, err := nc.notes.UpdateNote(c.Request.Context(), noteID, auth.GetUserID(c), req.Content)
	if err != nil {
		respondDomainError(c, err, "update note")
		return
	}

	c.JSON(http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/:id
func (nc *NotesController) DeleteNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := nc.notes.DeleteNote(c.Request.Context(), noteID, auth.GetUserID(c)); err != nil {
		respondDomainError(c, err, "delete note")
		return
	}

	c.Status(http.StatusNoContent)
}
