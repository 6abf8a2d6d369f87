package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/middleware"
	"github.com/kurodate/qa-board/backend/internal/models"
	"github.com/kurodate/qa-board/backend/internal/qa"
)

type QuestionHandler struct {
	svc *qa.Service
}

func NewQuestionHandler(svc *qa.Service) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

// requestIdentifier prefers the identifier the client put in the body
// (the original frontend sends userEmail there), falling back to
// whatever the identity middleware resolved.
func requestIdentifier(c *gin.Context, bodyIdentifier string) string {
	if bodyIdentifier != "" {
		return bodyIdentifier
	}
	if identifier, ok := middleware.CurrentIdentifier(c); ok {
		return identifier
	}
	return ""
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// GetQuestions returns the question listing with aggregates, sorted
// and optionally filtered by a title search term.
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	sortKey := c.DefaultQuery("sort", qa.SortRecent)
	search := c.Query("q")

	summaries, err := h.svc.ListQuestions(c.Request.Context(), sortKey, search)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summaries)
}

// CreateQuestion posts a new question and links its tags.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identifier := requestIdentifier(c, input.UserEmail)

	id, failures, err := h.svc.PostQuestion(c.Request.Context(), identifier, input.Title, input.Content, input.Tags)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"success": true, "id": id}
	if len(failures) > 0 {
		names := make([]string, 0, len(failures))
		for _, f := range failures {
			names = append(names, f.Name)
		}
		resp["failed_tags"] = names
	}

	c.JSON(http.StatusCreated, resp)
}

// GetQuestion returns a question with tags, vote sum, and answers.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.GetQuestionDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// IncrementViews bumps the view counter.
func (h *QuestionHandler) IncrementViews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	views, err := h.svc.IncrementViews(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "views": views})
}

// VoteQuestion applies the toggle-vote state machine to a question and
// returns its fresh vote sum.
func (h *QuestionHandler) VoteQuestion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.VoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identifier := requestIdentifier(c, input.UserEmail)

	sum, err := h.svc.ApplyVote(c.Request.Context(), identifier, models.VotableQuestion, id, input.VoteType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VoteResponse{Success: true, Votes: sum})
}
