package handler

import (
	"batepapo/backend/internal/chatroom"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// SendMessage handles POST /messages.
func (h *Handler) SendMessage(c *gin.Context) {
	var req chatroom.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.Room.Send(c.Request.Context(), caller(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// GetFeed handles GET /messages?limit=N. A missing or non-numeric limit
// returns the whole feed.
func (h *Handler) GetFeed(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = 0
	}

	feed, err := h.Room.GetFeed(c.Request.Context(), caller(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}
