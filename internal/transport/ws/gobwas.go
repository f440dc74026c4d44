package ws

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	gobws "github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/omochice/roster-chat/internal/chat"
)

// GobwasConn adapts a gobwas/ws client connection to chat.Conn interface.
// Control frames met while reading are answered between data writes.
type GobwasConn struct {
	conn   net.Conn
	reader *wsutil.Reader

	mu      sync.Mutex
	closing bool
}

// NewGobwasConn wraps a net.Conn that has completed the client handshake.
// br is the buffered reader returned by the dial and may be nil.
func NewGobwasConn(conn net.Conn, br *bufio.Reader) *GobwasConn {
	src := io.Reader(conn)
	if br != nil {
		src = br
	}
	return &GobwasConn{
		conn: conn,
		reader: &wsutil.Reader{
			Source:    src,
			State:     gobws.StateClientSide,
			CheckUTF8: true,
		},
	}
}

// Read implements chat.Conn.
func (c *GobwasConn) Read(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	c.reader.OnIntermediate = c.handleControl
	for {
		hdr, err := c.reader.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := c.handleControl(hdr, c.reader); err != nil {
				return nil, err
			}
			continue
		}
		if hdr.OpCode&(gobws.OpText|gobws.OpBinary) == 0 {
			if err := c.reader.Discard(); err != nil {
				return nil, err
			}
			continue
		}
		data, err := io.ReadAll(io.LimitReader(c.reader, ReadLimit+1))
		if err != nil {
			return nil, err
		}
		if len(data) > ReadLimit {
			return nil, fmt.Errorf("message exceeds read limit of %d bytes", ReadLimit)
		}
		return data, nil
	}
}

// handleControl answers pings and close frames. The reply is buffered so it
// goes out as one write under the write lock.
func (c *GobwasConn) handleControl(hdr gobws.Header, r io.Reader) error {
	var reply bytes.Buffer
	herr := wsutil.ControlFrameHandler(&reply, gobws.StateClientSide)(hdr, r)
	if reply.Len() > 0 {
		c.mu.Lock()
		_, werr := c.conn.Write(reply.Bytes())
		c.mu.Unlock()
		if herr == nil {
			herr = werr
		}
	}
	return herr
}

// Write implements chat.Conn.
func (c *GobwasConn) Write(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return net.ErrClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetWriteDeadline(deadline)
		defer c.conn.SetWriteDeadline(time.Time{})
	}
	// Client frames are masked in place.
	return wsutil.WriteClientText(c.conn, bytes.Clone(data))
}

// Close implements chat.Conn.
// The deadline is set before taking the write lock so that a Write blocked
// on a peer that stopped reading gives the lock up within closeGrace.
func (c *GobwasConn) Close() error {
	deadline := time.Now().Add(closeGrace)
	c.conn.SetWriteDeadline(deadline)

	c.mu.Lock()
	c.closing = true
	c.conn.SetWriteDeadline(deadline)
	_ = wsutil.WriteClientMessage(c.conn, gobws.OpClose, gobws.NewCloseFrameBody(gobws.StatusNormalClosure, ""))
	c.mu.Unlock()
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *GobwasConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// GobwasDialer dials with gobwas/ws.
type GobwasDialer struct {
	Dialer gobws.Dialer
}

// Dial implements chat.Dialer.
func (d GobwasDialer) Dial(ctx context.Context, endpoint string) (chat.Conn, error) {
	conn, br, _, err := d.Dialer.Dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	return NewGobwasConn(conn, br), nil
}
