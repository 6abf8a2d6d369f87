package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/database"
	"github.com/kurodate/qa-board/backend/internal/qa"
)

// Handler combines all handler types
type Handler struct {
	Question *QuestionHandler
	Answer   *AnswerHandler
	Tag      *TagHandler
	Session  *SessionHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *database.Database) *Handler {
	// Get the GORM DB instance from the service
	dbService := database.New()
	core := qa.New(dbService.GetDB())

	return &Handler{
		Question: NewQuestionHandler(core),
		Answer:   NewAnswerHandler(core),
		Tag:      NewTagHandler(core),
		Session:  NewSessionHandler(core),
	}
}

// respondError maps a core error kind onto an HTTP status. Store
// failures stay opaque.
func respondError(c *gin.Context, err error) {
	switch {
	case qa.IsKind(err, qa.KindInvalidInput),
		qa.IsKind(err, qa.KindInvalidVoteDirection),
		qa.IsKind(err, qa.KindInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case qa.IsKind(err, qa.KindNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
