package chat

import (
	"context"
	"fmt"
	"sync"
)

// outgoingBuffer bounds the frames queued on one transport.
const outgoingBuffer = 16

// handle is one transport owned by a Session. A new handle is created on
// every connect; the previous one is closed.
type handle struct {
	id       string
	username string
	ctx      context.Context
	cancel   context.CancelFunc
	outgoing chan []byte

	mu     sync.Mutex
	conn   Conn
	closed bool
}

func newHandle(id, username string) *handle {
	ctx, cancel := context.WithCancel(context.Background())
	return &handle{
		id:       id,
		username: username,
		ctx:      ctx,
		cancel:   cancel,
		outgoing: make(chan []byte, outgoingBuffer),
	}
}

// attach records the opened connection. It reports false if the handle was
// closed while dialing, in which case the caller owns conn.
func (h *handle) attach(conn Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.conn = conn
	return true
}

func (h *handle) close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	conn := h.conn
	h.mu.Unlock()

	h.cancel()
	if conn != nil {
		conn.Close()
	}
}

func (h *handle) remoteAddr() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conn == nil {
		return ""
	}
	return h.conn.RemoteAddr()
}

// enqueue hands data to the writer goroutine without blocking.
func (h *handle) enqueue(data []byte) error {
	select {
	case <-h.ctx.Done():
		return ErrNotConnected
	default:
	}
	select {
	case h.outgoing <- data:
		return nil
	default:
		return fmt.Errorf("conn %s: %w", h.id, ErrSendQueueFull)
	}
}

// dial opens the transport and then reads frames until it closes. Every
// outcome is posted back to the event loop.
func (s *Session) dial(h *handle) {
	defer s.wg.Done()

	conn, err := s.dialer.Dial(h.ctx, s.endpoint)
	if err != nil {
		s.post(dialFailed{h: h, err: fmt.Errorf("%w: %w", ErrConnectFailed, err)})
		return
	}
	if !h.attach(conn) {
		conn.Close()
		return
	}

	s.wg.Add(1)
	go s.write(h, conn)

	if !s.post(transportOpened{h: h}) {
		return
	}

	for {
		data, err := conn.Read(h.ctx)
		if err != nil {
			s.post(transportClosed{h: h, err: err})
			return
		}
		if !s.post(frameReceived{h: h, data: data}) {
			return
		}
	}
}

// write drains the outgoing queue in order.
func (s *Session) write(h *handle, conn Conn) {
	defer s.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		case data := <-h.outgoing:
			if err := conn.Write(h.ctx, data); err != nil {
				s.post(sendFailed{h: h, err: fmt.Errorf("failed to send message: %w", err)})
				return
			}
		}
	}
}
