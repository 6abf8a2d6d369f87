package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kurodate/qa-board/backend/internal/qa"
)

type TagHandler struct {
	svc *qa.Service
}

func NewTagHandler(svc *qa.Service) *TagHandler {
	return &TagHandler{svc: svc}
}

// GetTags returns the most-used tags with their usage counts.
func (h *TagHandler) GetTags(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	tags, err := h.svc.ListTags(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tags)
}

// GetTag returns one tag and the questions linked to it.
func (h *TagHandler) GetTag(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.svc.GetTagDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}
