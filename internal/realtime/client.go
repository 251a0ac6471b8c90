package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"labreserve-backend/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Envelope is the frame written to websocket clients.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   ChangeEvent `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Client is one websocket connection bound to one subscription.
type Client struct {
	conn   *websocket.Conn
	sub    *Subscription
	userID uuid.UUID
}

// Serve subscribes conn with filter and pumps events to it until either side
// goes away. It blocks.
func Serve(ctx context.Context, hub *Hub, conn *websocket.Conn, filter Filter, userID uuid.UUID) error {
	sub, err := hub.Subscribe(ctx, filter)
	if err != nil {
		conn.Close()
		return err
	}
	c := &Client{conn: conn, sub: sub, userID: userID}
	logger.Info("Realtime client connected", "user_id", userID, "table", filter.Table)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		c.readPump()
		cancel()
	}()
	c.writePump(ctx)

	hub.Unsubscribe(sub)
	logger.Info("Realtime client disconnected", "user_id", userID)
	return nil
}

// readPump only drains control frames; clients never send data.
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Realtime client read failed", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case ev, ok := <-c.sub.Events():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frame, err := json.Marshal(Envelope{Type: "change", Payload: ev, Timestamp: time.Now().UTC()})
			if err != nil {
				logger.Warn("Realtime frame encode failed", "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
