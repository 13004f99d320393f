package realtime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/stanleysydney/anonsafety-api/internal/dto"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler bridges hub subscriptions onto websocket connections.
type WSHandler struct {
	hub    *Hub
	logger *zap.Logger
}

// NewWSHandler builds the websocket endpoint handler.
func NewWSHandler(hub *Hub, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{hub: hub, logger: logger}
}

// Serve upgrades the request and streams new_report events until the client
// disconnects. Disconnect implicitly unsubscribes.
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Subscribe()
	h.logger.Debug("feed viewer connected", zap.Int("subscribers", h.hub.Len()))

	go h.readLoop(conn, sub)
	h.writeLoop(conn, sub)
}

// readLoop discards inbound frames; its job is detecting disconnects so the
// subscription is torn down promptly.
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *Subscriber) {
	defer h.hub.Unsubscribe(sub)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.hub.Unsubscribe(sub)
		_ = conn.Close()
	}()

	for {
		select {
		case report, ok := <-sub.Events():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(dto.ReportEvent{Event: dto.NewReportEvent, Data: report}); err != nil {
				h.logger.Debug("feed viewer write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
