// fieldbook/internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"fieldbook/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Longest silence tolerated from a client before the connection is dropped.
const pongWait = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub *socket.Hub
}

// ServeWs subscribes the caller to field change events.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	id := h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(id)
		conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", id).Msg("Unexpected close error")
			}
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
