package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/auth"
	"github.com/kurodate/qa-board/backend/internal/middleware"
	"github.com/kurodate/qa-board/backend/internal/models"
	"github.com/kurodate/qa-board/backend/internal/qa"
)

type SessionHandler struct {
	svc *qa.Service
}

func NewSessionHandler(svc *qa.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// CreateSession resolves the caller's identity and mints a guest token
// for it, so later requests can carry a Bearer token instead of the
// proxy header. No passwords here; identity is the upstream's problem.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var input struct {
		UserEmail string `json:"userEmail"`
	}
	// Body is optional; the header alone is enough.
	_ = c.ShouldBindJSON(&input)

	identifier := requestIdentifier(c, input.UserEmail)

	userID, err := h.svc.ResolveUser(c.Request.Context(), identifier)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := auth.GenerateToken(identifier, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		Token:      token,
		Identifier: identifier,
		UserID:     userID,
		Message:    "Session created",
	})
}

// GetMe echoes the identity the middleware resolved for this request.
func (h *SessionHandler) GetMe(c *gin.Context) {
	identifier, ok := middleware.CurrentIdentifier(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No identity"})
		return
	}

	userID, err := h.svc.ResolveUser(c.Request.Context(), identifier)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"identifier": identifier, "user_id": userID})
}
