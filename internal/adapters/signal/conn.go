package signal

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/dkeye/Video/internal/hub"
)

var ErrBackpressure = errors.New("backpressure")

// WsSignalConn is the hub-facing endpoint of one websocket session.
// TrySend never blocks: a full send buffer drops the frame.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan hub.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f hub.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
