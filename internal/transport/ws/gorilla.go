package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/omochice/roster-chat/internal/chat"
)

// closeGrace bounds how long Close waits to deliver the close frame.
const closeGrace = time.Second

// GorillaConn adapts gorilla/websocket to chat.Conn interface.
type GorillaConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// NewGorillaConn wraps a gorilla websocket.Conn.
func NewGorillaConn(conn *websocket.Conn) *GorillaConn {
	return &GorillaConn{conn: conn}
}

// Read implements chat.Conn.
func (c *GorillaConn) Read(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write implements chat.Conn.
// gorilla allows one concurrent writer, so writes are serialized.
func (c *GorillaConn) Write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close implements chat.Conn.
func (c *GorillaConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *GorillaConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// GorillaDialer dials with gorilla/websocket.
type GorillaDialer struct {
	Dialer *websocket.Dialer
}

// Dial implements chat.Dialer.
func (d GorillaDialer) Dial(ctx context.Context, endpoint string) (chat.Conn, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	conn.SetReadLimit(ReadLimit)
	return NewGorillaConn(conn), nil
}
