package ws

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"campushub/domain"
	"campushub/domain/event"
)

// Connection is one admitted WebSocket session. The claim is attached at
// admission and never changes; every inbound frame acts as this identity.
type Connection struct {
	sessionID string
	claim     domain.Claim
	conn      *websocket.Conn
	sink      *Sink
	log       *slog.Logger

	pingInterval time.Duration
	pongTimeout  time.Duration

	lastPong  atomic.Int64
	closeOnce sync.Once
	done      chan struct{}
}

func newConnection(sessionID string, claim domain.Claim, conn *websocket.Conn,
	sink *Sink, log *slog.Logger, pingInterval, pongTimeout time.Duration) *Connection {
	c := &Connection{
		sessionID:    sessionID,
		claim:        claim,
		conn:         conn,
		sink:         sink,
		log:          log,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
		done:         make(chan struct{}),
	}
	c.lastPong.Store(time.Now().UnixNano())
	return c
}

// close is idempotent; both pumps and the sweeper may race to it.
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// idleSince reports how long ago the peer last answered a ping.
func (c *Connection) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, c.lastPong.Load()))
}

// writePump drains the sink onto the wire and keeps the ping heartbeat going.
// It owns all writes; gorilla connections allow a single writer.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case e := <-c.sink.Outbound:
			raw, err := event.EncodeFrame(e)
			if err != nil {
				c.log.Error("Failed to encode outbound frame",
					"session_id", c.sessionID, "event", string(e.Kind()), "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.pongTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				c.log.Debug("Write failed, closing connection", "session_id", c.sessionID, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.pongTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads inbound frames and hands them to the dispatcher. It returns
// when the peer goes away; the caller tears the session down afterwards.
func (c *Connection) readPump(ctx context.Context, dispatcher *Dispatcher) {
	defer c.close()

	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.lastPong.Store(time.Now().UnixNano())
		return c.conn.SetReadDeadline(time.Now().Add(c.pongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("Unexpected close", "session_id", c.sessionID, "error", err)
			}
			return
		}
		dispatcher.Dispatch(ctx, c.claim, c.sessionID, c.sink, raw)
	}
}
