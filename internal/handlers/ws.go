package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/auth"
	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// wsClient serializes writes to the underlying connection; pushes arrive from
// many goroutines but gorilla permits only one concurrent writer.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

func (c *wsClient) Close() error {
	return c.conn.Close()
}

func (c *wsClient) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// closePolicyViolation rejects an unauthenticated connection with close code
// 1008 so well-behaved clients know not to retry with the same token.
func (c *wsClient) closePolicyViolation(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)

	if err := c.conn.WriteControl(websocket.CloseMessage, message, deadline); err != nil {
		log.Printf("Failed to send close message: %v", err)
	}

	c.conn.Close()
}

// WebSocket accepts a realtime connection. The bearer token travels in the
// "token" query parameter; verification and user lookup happen in the same
// synchronous step before the connection is ever registered.
func WebSocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return types.OriginAllowed(r.Header.Get("Origin"))
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsClient{conn: conn}

	tokenString := c.Query("token")

	if tokenString == "" {
		client.closePolicyViolation("missing token")
		return
	}

	token, err := auth.VerifyJWT(tokenString)

	if err != nil {
		client.closePolicyViolation("invalid token")
		return
	}

	userID, err := auth.UserIDFromToken(token)

	if err != nil {
		client.closePolicyViolation("invalid token")
		return
	}

	var user models.User

	if err := db.DB.First(&user, userID).Error; err != nil {
		client.closePolicyViolation("unknown user")
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	hub.Register(user.ID, client)

	// Unregister exactly once when the connection reaches its end of life.
	defer func() {
		hub.Unregister(user.ID, client)
		conn.Close()

		log.Printf("WebSocket connection closed for user %d", user.ID)
	}()

	done := make(chan struct{})
	defer close(done)

	ticker := time.NewTicker(pingPeriod)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := client.ping(); err != nil {
					log.Printf("Ping failed for user %d: %v", user.ID, err)
					return
				}
			}
		}
	}()

	// The channel is push-only from the server's perspective; client frames
	// are read to keep the connection alive and then discarded.
	for {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline for user %d: %v", user.ID, err)
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %d: %v", user.ID, err)
			}
			break
		}
	}
}
