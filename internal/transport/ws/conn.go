// Package ws provides the WebSocket transports a chat session can dial.
package ws

import (
	"context"
	"fmt"
	"net/url"

	"github.com/omochice/roster-chat/internal/chat"
	"nhooyr.io/websocket"
)

// ReadLimit is the largest message, in bytes, any transport accepts. A larger
// message fails the Read and the connection is closed.
const ReadLimit = 1 << 20

// Conn adapts nhooyr.io/websocket to chat.Conn interface.
type Conn struct {
	conn       *websocket.Conn
	remoteAddr string
}

// NewConnWithAddr wraps a websocket.Conn with the specified remote address.
func NewConnWithAddr(conn *websocket.Conn, addr string) *Conn {
	return &Conn{conn: conn, remoteAddr: addr}
}

// Read implements chat.Conn.
// Reads one text or binary message from the WebSocket connection.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// Write implements chat.Conn.
// Writes a text message to the WebSocket connection.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// Dialer dials with nhooyr.io/websocket.
type Dialer struct {
	Options *websocket.DialOptions
}

// Dial implements chat.Dialer.
func (d Dialer) Dial(ctx context.Context, endpoint string) (chat.Conn, error) {
	conn, _, err := websocket.Dial(ctx, endpoint, d.Options)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	conn.SetReadLimit(ReadLimit)
	return NewConnWithAddr(conn, hostOf(endpoint)), nil
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	return u.Host
}
