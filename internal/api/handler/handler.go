// Package handler binds the chat room operations to HTTP.
package handler

import (
	"batepapo/backend/internal/chathub"
	"batepapo/backend/internal/chatroom"
	"batepapo/backend/internal/models"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHeader carries the caller's participant name.
const UserHeader = "User"

// HealthChecker is the part of the store the health endpoint probes.
type HealthChecker interface {
	Ping(ctx context.Context) error
	HasBroker() bool
	PingBroker(ctx context.Context) error
}

// Handler holds the dependencies shared by all routes.
type Handler struct {
	Room  *chatroom.Service
	Hub   *chathub.ManagerService
	Store HealthChecker
	log   zerolog.Logger
}

func NewHandler(room *chatroom.Service, hub *chathub.ManagerService, health HealthChecker, log zerolog.Logger) *Handler {
	return &Handler{
		Room:  room,
		Hub:   hub,
		Store: health,
		log:   log.With().Str("component", "api").Logger(),
	}
}

// caller returns the participant name the request claims to come from.
func caller(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(UserHeader))
}

// fail maps a room error to its HTTP status.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrValidation):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
