package handler

import (
	"batepapo/backend/internal/chathub"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The room has no origin policy; identity is the trusted User header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket handles GET /ws. The participant comes from the user query
// parameter or the User header and must be active.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	name := strings.TrimSpace(c.Query("user"))
	if name == "" {
		name = caller(c)
	}

	if _, err := h.Room.Lookup(c.Request.Context(), name); err != nil {
		h.fail(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Debug().Err(err).Str("participant", name).Msg("websocket upgrade failed")
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn, name, h.log)
	if !h.Hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}

	client.Run()
}
