package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/models"
	"github.com/kurodate/qa-board/backend/internal/qa"
)

type AnswerHandler struct {
	svc *qa.Service
}

func NewAnswerHandler(svc *qa.Service) *AnswerHandler {
	return &AnswerHandler{svc: svc}
}

// GetAnswers returns a question's answers oldest first.
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	answers, err := h.svc.ListAnswers(c.Request.Context(), questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	// If no answers, return empty array not null
	if answers == nil {
		answers = []models.Answer{}
	}

	c.JSON(http.StatusOK, answers)
}

// CreateAnswer posts an answer and touches the question's activity.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identifier := requestIdentifier(c, input.UserEmail)

	answer, err := h.svc.PostAnswer(c.Request.Context(), identifier, questionID, input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"answer": gin.H{
			"id":         answer.ID,
			"content":    answer.Body,
			"created_at": answer.CreatedAt,
		},
	})
}

// VoteAnswer applies the toggle-vote state machine to an answer.
func (h *AnswerHandler) VoteAnswer(c *gin.Context) {
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

	sum, err := h.svc.ApplyVote(c.Request.Context(), identifier, models.VotableAnswer, id, input.VoteType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VoteResponse{Success: true, Votes: sum})
}
