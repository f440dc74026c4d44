// Package chattest provides a scriptable WebSocket chat peer for tests.
package chattest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

// Timeout bounds every wait in this package.
const Timeout = 2 * time.Second

// Server accepts WebSocket connections and hands each one to the test as a Peer.
type Server struct {
	// URL is the ws:// address of the server.
	URL string

	// HandshakeDelay holds every opening handshake back by this long.
	HandshakeDelay time.Duration

	srv   *httptest.Server
	peers chan *Peer
	mu    sync.Mutex
	all   []*Peer
}

// Peer is the server side of one accepted connection.
type Peer struct {
	conn     *websocket.Conn
	received chan []byte
	done     chan struct{}
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{peers: make(chan *Peer, 10)}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handleWebSocket))
	s.URL = "ws" + strings.TrimPrefix(s.srv.URL, "http")
	t.Cleanup(s.Close)
	return s
}

// Close closes every peer and stops the server.
func (s *Server) Close() {
	s.mu.Lock()
	peers := s.all
	s.all = nil
	s.mu.Unlock()
	for _, p := range peers {
		p.Close()
	}
	s.srv.Close()
}

// Accept waits for the next connection.
func (s *Server) Accept(t testing.TB) *Peer {
	t.Helper()
	select {
	case p := <-s.peers:
		return p
	case <-time.After(Timeout):
		t.Fatal("timeout waiting for connection")
		return nil
	}
}

// Pending reports how many accepted connections have not been taken by Accept.
func (s *Server) Pending() int {
	return len(s.peers)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.HandshakeDelay > 0 {
		select {
		case <-time.After(s.HandshakeDelay):
		case <-r.Context().Done():
			return
		}
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}

	p := &Peer{
		conn:     conn,
		received: make(chan []byte, 10),
		done:     make(chan struct{}),
	}
	s.mu.Lock()
	s.all = append(s.all, p)
	s.mu.Unlock()
	s.peers <- p

	defer close(p.done)
	for {
		_, data, err := conn.Read(context.Background())
		if err != nil {
			return
		}
		p.received <- data
	}
}

// Next waits for the next frame the client sent.
func (p *Peer) Next(t testing.TB) string {
	t.Helper()
	select {
	case data := <-p.received:
		return string(data)
	case <-time.After(Timeout):
		t.Fatal("timeout waiting for frame")
		return ""
	}
}

// Quiet fails the test if the client sends anything within d.
func (p *Peer) Quiet(t testing.TB, d time.Duration) {
	t.Helper()
	select {
	case data := <-p.received:
		t.Fatalf("unexpected frame %s", data)
	case <-time.After(d):
	}
}

// Send writes one text frame to the client and fails the test on error.
func (p *Peer) Send(t testing.TB, frame string) {
	t.Helper()
	if err := p.Write(frame); err != nil {
		t.Fatalf("failed to write frame: %v", err)
	}
}

// Write writes one text frame to the client. It is safe to call from any
// goroutine.
func (p *Peer) Write(frame string) error {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()
	return p.conn.Write(ctx, websocket.MessageText, []byte(frame))
}

// Close closes the connection from the server side.
func (p *Peer) Close() {
	p.conn.Close(websocket.StatusNormalClosure, "")
}

// Closed waits until the client side has gone away.
func (p *Peer) Closed(t testing.TB) {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(Timeout):
		t.Fatal("timeout waiting for connection to close")
	}
}
