// Package ws wraps a gorilla websocket in the send-channel shape the
// room actor expects: non-blocking sends with backpressure, explicit
// close codes, pumps tied to a cancellable context.
package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewConn(ws *websocket.Conn, sendBuffer int) *Conn {
	return &Conn{
		ws:   ws,
		send: make(chan []byte, sendBuffer),
	}
}

// TrySend queues a frame without blocking. A full buffer returns
// ErrBackpressure and the frame is dropped for this connection only.
func (c *Conn) TrySend(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close sends a close control frame carrying code and reason, then
// tears the socket down. Safe to call from any goroutine, once.
func (c *Conn) Close(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = c.ws.Close()
}

// Run pumps the connection: writes drain on a side goroutine, reads
// are handed to onMessage one at a time from this goroutine. It blocks
// until the peer goes away or ctx is cancelled, then calls onClose.
func (c *Conn) Run(ctx context.Context, onMessage func([]byte), onClose func()) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(onMessage)
	onClose()
	c.Close(websocket.CloseNormalClosure, "")
}

func (c *Conn) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Warn().Err(err).Str("module", "adapters.ws").Msg("set write deadline")
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "adapters.ws").Msg("write failed")
				return
			}
		}
	}
}

func (c *Conn) readPump(onMessage func([]byte)) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("module", "adapters.ws").Msg("read loop ended")
			}
			return
		}
		onMessage(data)
	}
}
