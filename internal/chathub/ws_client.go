package chathub

import (
	"batepapo/backend/internal/models"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// WebSocketClient implements Client over a gorilla/websocket connection.
// The live feed is read-only: frames sent by the peer are discarded.
type WebSocketClient struct {
	Name string
	Conn *websocket.Conn
	Hub  *ManagerService
	Send chan models.Message
	Log  zerolog.Logger
}

// NewWebSocketClient wraps conn for participant name.
func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, name string, log zerolog.Logger) *WebSocketClient {
	return &WebSocketClient{
		Name: name,
		Conn: conn,
		Hub:  hub,
		Send: make(chan models.Message, sendBuffer),
		Log:  log.With().Str("participant", name).Logger(),
	}
}

func (c *WebSocketClient) GetName() string                       { return c.Name }
func (c *WebSocketClient) GetSendChannel() chan<- models.Message { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes Send, which makes writePump send a close frame and exit.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Log.Warn().Err(err).Msg("live feed read failed")
			}
			return
		}
	}
}

// writePump writes each message from Send as its own JSON text frame.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				c.Log.Debug().Err(err).Msg("live feed write failed")
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
