package routes

import (
	"errors"
	"net/http"

	"notes-app/notes/database"
	"notes-app/notes/middleware"
	"notes-app/notes/models"
	"notes-app/notes/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterNoteRoutes mounts the write endpoints the editor page calls.
func RegisterNoteRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface) {
	group.POST("", func(c *gin.Context) { CreateNote(c, db, noteService) })
	group.PUT("/:id", func(c *gin.Context) { UpdateNote(c, db, noteService) })
	group.DELETE("/:id", func(c *gin.Context) { DeleteNote(c, db, noteService) })
}

// RegisterNoteAPIRoutes mounts the full JSON API, reads included.
func RegisterNoteAPIRoutes(group *gin.RouterGroup, db *database.Database, noteService services.NoteServiceInterface) {
	group.GET("", func(c *gin.Context) { GetNotes(c, db, noteService) })
	group.GET("/:id", func(c *gin.Context) { GetNoteById(c, db, noteService) })
	RegisterNoteRoutes(group, db, noteService)
}

func currentUserID(c *gin.Context) uuid.UUID {
	session, ok := middleware.CurrentIdentity(c)
	if !ok {
		return uuid.Nil
	}
	return session.UserID
}

func GetNotes(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	notes, err := noteService.ListNotes(c.Request.Context(), db, currentUserID(c))
	if err != nil {
		writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, notes)
}

func GetNoteById(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	note, err := noteService.GetNote(c.Request.Context(), db, currentUserID(c), c.Param("id"))
	if err != nil {
		writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func CreateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	var input models.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	note, err := noteService.CreateNote(c.Request.Context(), db, currentUserID(c), input)
	if err != nil {
		writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func UpdateNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	var input models.NoteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	note, err := noteService.UpdateNote(c.Request.Context(), db, currentUserID(c), c.Param("id"), input)
	if err != nil {
		writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func DeleteNote(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	if err := noteService.DeleteNote(c.Request.Context(), db, currentUserID(c), c.Param("id")); err != nil {
		writeNoteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeNoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrNoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
	case errors.Is(err, services.ErrCannotEditDeleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot edit deleted note"})
	case errors.Is(err, services.ErrAlreadyDeleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Note already deleted"})
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
