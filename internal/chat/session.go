package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/omochice/roster-chat/pkg/protocol"
)

const (
	// DefaultEndpoint is the server address used when none is configured.
	DefaultEndpoint = "ws://localhost:8000/ws"

	// DefaultHandshakeDelay is how long a message typed while disconnected
	// waits before the session checks whether the transport has opened.
	DefaultHandshakeDelay = time.Second

	// MissingUsernameAlert is shown when connecting without a username.
	MissingUsernameAlert = "Please enter a username."
)

// Options configures a Session. Zero values select the defaults.
type Options struct {
	Endpoint       string
	HandshakeDelay time.Duration
	Logger         *log.Logger

	// OnError receives every reported failure: missing username, dropped
	// messages, malformed frames and send failures.
	OnError func(error)

	// OnStateChange receives every status transition.
	OnStateChange func(StateEvent)
}

// Session is a chat client session. It owns at most one transport at a time
// and a connected/disconnected status. All session state and every View call
// belong to the goroutine running Run.
type Session struct {
	endpoint string
	dialer   Dialer
	view     View
	delay    time.Duration
	logger   *log.Logger
	onError  func(error)
	onState  func(StateEvent)

	events chan event
	done   chan struct{}
	wg     sync.WaitGroup
	status atomic.Int32

	// owned by the event loop
	current *handle
}

// New creates a new Session. Nothing is dialed until Connect or SendMessage.
func New(dialer Dialer, view View, opts Options) *Session {
	s := &Session{
		endpoint: opts.Endpoint,
		dialer:   dialer,
		view:     view,
		delay:    opts.HandshakeDelay,
		logger:   opts.Logger,
		onError:  opts.OnError,
		onState:  opts.OnStateChange,
		events:   make(chan event, 64),
		done:     make(chan struct{}),
	}
	if s.endpoint == "" {
		s.endpoint = DefaultEndpoint
	}
	if s.delay <= 0 {
		s.delay = DefaultHandshakeDelay
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Status returns the current status. It is safe to call from any goroutine.
func (s *Session) Status() Status {
	return Status(s.status.Load())
}

// Connect opens a new transport for username, replacing the current one.
// An empty username raises an alert on the view instead.
func (s *Session) Connect(username string) {
	s.post(connectRequest{username: username})
}

// SendMessage sends the content of the message field. When disconnected it
// connects first and tries once more after the handshake delay; if the
// transport is still not open by then the message is dropped and
// ErrHandshakeIncomplete is reported.
func (s *Session) SendMessage() {
	s.post(sendRequest{})
}

// Run processes session events until ctx is done, then closes the current
// transport and waits for its goroutines.
func (s *Session) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			close(s.done)
			if s.current != nil {
				s.current.close()
				s.current = nil
			}
			s.wg.Wait()
			return nil
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

func (s *Session) post(ev event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) dispatch(ev event) {
	switch ev := ev.(type) {
	case connectRequest:
		s.connect(ev.username)
	case sendRequest:
		s.sendMessage()
	case handshakeTimer:
		s.retrySend()
	case dialFailed:
		s.dialFailed(ev.h, ev.err)
	case transportOpened:
		s.opened(ev.h)
	case frameReceived:
		s.received(ev.h, ev.data)
	case transportClosed:
		s.closed(ev.h, ev.err)
	case sendFailed:
		if ev.h == s.current {
			s.report(ev.err)
		}
	}
}

func (s *Session) connect(username string) {
	if username == "" {
		s.view.Alert(MissingUsernameAlert)
		s.report(ErrMissingUsername)
		return
	}

	if old := s.current; old != nil {
		s.current = nil
		old.close()
		s.setStatus(old.id, StatusDisconnected, nil)
	}

	h := newHandle(uuid.NewString(), username)
	s.current = h
	s.logger.Printf("Connecting to %s as %s (conn %s)", s.endpoint, username, h.id)

	s.wg.Add(1)
	go s.dial(h)
}

func (s *Session) sendMessage() {
	username := s.view.Username()
	if s.Status() == StatusDisconnected {
		s.connect(username)
		time.AfterFunc(s.delay, func() {
			s.post(handshakeTimer{})
		})
		return
	}
	s.sendInput()
}

func (s *Session) retrySend() {
	if s.Status() != StatusConnected {
		s.report(ErrHandshakeIncomplete)
		return
	}
	s.sendInput()
}

// sendInput sends whatever the message field holds right now.
func (s *Session) sendInput() {
	if err := s.send(protocol.ChatFrame{Content: s.view.MessageText()}); err != nil {
		s.report(err)
		return
	}
	s.view.ClearMessage()
	s.view.FocusMessage()
}

func (s *Session) send(f protocol.OutboundFrame) error {
	if s.current == nil {
		return ErrNotConnected
	}
	data, err := f.Encode()
	if err != nil {
		return err
	}
	return s.current.enqueue(data)
}

func (s *Session) opened(h *handle) {
	if h != s.current {
		h.close()
		return
	}
	if err := s.send(protocol.IdentityFrame{Username: h.username}); err != nil {
		s.report(fmt.Errorf("failed to join chat: %w", err))
	}
	s.logger.Printf("Connected to %s as %s (conn %s)", h.remoteAddr(), h.username, h.id)
	s.setStatus(h.id, StatusConnected, nil)
}

func (s *Session) received(h *handle, data []byte) {
	if h != s.current {
		return
	}
	var f protocol.InboundFrame
	if err := f.Decode(data); err != nil {
		s.report(fmt.Errorf("conn %s: failed to decode message %q: %w", h.id, data, err))
		return
	}
	switch f.Kind {
	case protocol.KindRoster:
		s.renderRosterUpdate(f.Roster.Users)
	default:
		s.renderChatEvent(f.Chat)
	}
}

// dialFailed drops a handle that never opened. The status was never
// Connected, so there is no transition and the cause goes to the error hook.
func (s *Session) dialFailed(h *handle, err error) {
	if h != s.current {
		return
	}
	s.current = nil
	h.close()
	s.report(fmt.Errorf("conn %s: %w", h.id, err))
}

func (s *Session) closed(h *handle, err error) {
	if h != s.current {
		return
	}
	s.current = nil
	h.close()
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Printf("Connection closed (conn %s): %v", h.id, err)
	} else {
		s.logger.Printf("Connection closed (conn %s)", h.id)
	}
	s.setStatus(h.id, StatusDisconnected, err)
}

// renderRosterUpdate replaces the roster wholesale. Order and duplicates are kept.
func (s *Session) renderRosterUpdate(users []string) {
	s.view.ReplaceRoster(slices.Clone(users))
}

// renderChatEvent appends one history line. The content is passed on verbatim.
func (s *Session) renderChatEvent(ev protocol.ChatEvent) {
	s.view.AppendLine(ev)
}

func (s *Session) setStatus(connID string, status Status, err error) {
	old := Status(s.status.Swap(int32(status)))
	if old == status {
		return
	}
	if s.onState != nil {
		s.onState(StateEvent{ConnID: connID, Old: old, New: status, Err: err})
	}
}

func (s *Session) report(err error) {
	s.logger.Printf("%v", err)
	if s.onError != nil {
		s.onError(err)
	}
}
