// Package api assembles the HTTP surface of the chat room.
package api

import (
	"batepapo/backend/internal/api/handler"
	"batepapo/backend/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewRouter wires every route onto a fresh gin engine.
func NewRouter(h *handler.Handler, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/participants", h.Join)
	r.GET("/participants", h.ListParticipants)

	r.POST("/messages", h.SendMessage)
	r.GET("/messages", h.GetFeed)

	r.POST("/status", h.Heartbeat)

	r.GET("/ws", h.ServeWebSocket)

	return r
}
