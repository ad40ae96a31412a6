package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type joinRequest struct {
	Name string `json:"name" binding:"required"`
}

// Join handles POST /participants.
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	p, err := h.Room.Join(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ListParticipants handles GET /participants.
func (h *Handler) ListParticipants(c *gin.Context) {
	participants, err := h.Room.ListActive(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, participants)
}

// Heartbeat handles POST /status.
func (h *Handler) Heartbeat(c *gin.Context) {
	if err := h.Room.Heartbeat(c.Request.Context(), caller(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
