package routes

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"notes-app/notes/database"
	"notes-app/notes/models"
	"notes-app/notes/services"

	"github.com/gin-gonic/gin"
)

const newNoteID = "new"

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded page templates for gin's HTML renderer.
func LoadTemplates() (*template.Template, error) {
	return template.New("").
		Funcs(template.FuncMap{"formatDate": formatDate}).
		ParseFS(templateFS, "templates/*.html")
}

func formatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

func RegisterPageRoutes(router *gin.Engine, db *database.Database, noteService services.NoteServiceInterface) {
	router.GET("/login", LoginPage)
	router.GET("/notes", func(c *gin.Context) { NotesPage(c, db, noteService) })
	router.GET("/notes/:id", func(c *gin.Context) { NoteEditorPage(c, db, noteService) })
}

func LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"CheckEmail": c.Query("checkEmail") == "1",
		"Verified":   c.Query("verified") == "1",
		"Error":      c.Query("error"),
	})
}

// NotesPage lists the caller's notes. A failed read renders an empty list.
func NotesPage(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	notes, err := noteService.ListNotes(c.Request.Context(), db, currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		notes = []models.Note{}
	}

	c.HTML(http.StatusOK, "notes.html", gin.H{
		"Notes":    notes,
		"Verified": c.Query("verified") == "1",
	})
}

// NoteEditorPage renders the editor. Notes the caller cannot see send them back to the list.
func NoteEditorPage(c *gin.Context, db *database.Database, noteService services.NoteServiceInterface) {
	id := c.Param("id")
	if id == newNoteID {
		c.HTML(http.StatusOK, "note.html", gin.H{"Heading": "New Note"})
		return
	}

	note, err := noteService.GetNote(c.Request.Context(), db, currentUserID(c), id)
	if err != nil {
		c.Redirect(http.StatusFound, "/notes")
		return
	}

	c.HTML(http.StatusOK, "note.html", gin.H{
		"Heading": "Edit Note",
		"Note":    note,
	})
}
