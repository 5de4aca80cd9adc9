package websocket

import (
	"net/http"
	"time"

	"resqlink/models"
	"resqlink/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Buffer size for client send channel
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is delegated to the CORS layer.
		return true
	},
}

type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	userID string

	// Buffered channel of outbound events
	send chan models.WSEvent
}

// ServeWS authenticates the feed request with the token query parameter and
// upgrades it. Only responders may subscribe.
func ServeWS(hub *Hub, jwtService *utils.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.UnauthorizedResponse(c, "Missing token")
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid token")
			return
		}
		if claims.Role != models.UserTypeVolunteer && claims.Role != models.UserTypeAdmin {
			utils.ForbiddenResponse(c, "Responder access required")
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := &Client{
			conn:   conn,
			hub:    hub,
			userID: claims.UserID,
			send:   make(chan models.WSEvent, sendBufferSize),
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}

// readPump discards inbound frames; it exists to service control messages
// and to detect closed connections.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Debugf("WebSocket read error for %s: %v", c.userID, err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
