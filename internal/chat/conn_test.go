package chat_test

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/omochice/roster-chat/internal/chat"
	"github.com/omochice/roster-chat/pkg/protocol"
)

// mockConn is a mock implementation of chat.Conn for testing.
type mockConn struct {
	readCh     chan []byte
	closedCh   chan struct{}
	closeOnce  sync.Once
	writtenMu  sync.Mutex
	written    [][]byte
	writeErr   error
	remoteAddr string
}

func newMockConn(addr string) *mockConn {
	return &mockConn{
		readCh:     make(chan []byte, 10),
		closedCh:   make(chan struct{}),
		remoteAddr: addr,
	}
}

func (m *mockConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.closedCh:
		return nil, io.EOF
	case data, ok := <-m.readCh:
		if !ok {
			return nil, io.EOF
		}
		return data, nil
	}
}

func (m *mockConn) Write(ctx context.Context, data []byte) error {
	m.writtenMu.Lock()
	defer m.writtenMu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	m.written = append(m.written, copied)
	return nil
}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closedCh) })
	return nil
}

func (m *mockConn) RemoteAddr() string {
	return m.remoteAddr
}

func (m *mockConn) GetWritten() []string {
	m.writtenMu.Lock()
	defer m.writtenMu.Unlock()
	out := make([]string, len(m.written))
	for i, w := range m.written {
		out[i] = string(w)
	}
	return out
}

func (m *mockConn) IsClosed() bool {
	select {
	case <-m.closedCh:
		return true
	default:
		return false
	}
}

// mockDialer hands out a fresh mockConn per Dial. When gate is set, Dial
// blocks until the gate is closed, simulating a slow opening handshake.
type mockDialer struct {
	mu    sync.Mutex
	conns []*mockConn
	gate  chan struct{}
	err   error
}

func (d *mockDialer) Dial(ctx context.Context, endpoint string) (chat.Conn, error) {
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	c := newMockConn("127.0.0.1:8000")
	d.mu.Lock()
	d.conns = append(d.conns, c)
	d.mu.Unlock()
	return c, nil
}

func (d *mockDialer) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func (d *mockDialer) Conn(i int) *mockConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

// fakeView records every call the session makes on its view.
type fakeView struct {
	mu       sync.Mutex
	username string
	message  string
	cleared  int
	focused  int
	alerts   []string
	roster   []string
	rosters  int
	lines    []protocol.ChatEvent
}

func (v *fakeView) Username() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.username
}

func (v *fakeView) MessageText() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.message
}

func (v *fakeView) ClearMessage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = ""
	v.cleared++
}

func (v *fakeView) FocusMessage() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focused++
}

func (v *fakeView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, msg)
}

func (v *fakeView) ReplaceRoster(users []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.roster = users
	v.rosters++
}

func (v *fakeView) AppendLine(ev protocol.ChatEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lines = append(v.lines, ev)
}

func (v *fakeView) SetMessage(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.message = text
}

// viewState is a point-in-time copy of a fakeView.
type viewState struct {
	username string
	message  string
	cleared  int
	focused  int
	alerts   []string
	roster   []string
	rosters  int
	lines    []protocol.ChatEvent
}

func (v *fakeView) snapshot() viewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return viewState{
		username: v.username,
		message:  v.message,
		cleared:  v.cleared,
		focused:  v.focused,
		alerts:   append([]string(nil), v.alerts...),
		roster:   append([]string(nil), v.roster...),
		rosters:  v.rosters,
		lines:    append([]protocol.ChatEvent(nil), v.lines...),
	}
}

// errorLog collects errors reported through Options.OnError.
type errorLog struct {
	mu   sync.Mutex
	errs []error
}

func (l *errorLog) Add(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func (l *errorLog) Count(target error) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, err := range l.errs {
		if errors.Is(err, target) {
			n++
		}
	}
	return n
}

// Compile-time checks
var (
	_ chat.Conn   = (*mockConn)(nil)
	_ chat.Dialer = (*mockDialer)(nil)
	_ chat.View   = (*fakeView)(nil)
)
