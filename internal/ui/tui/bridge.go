// Package tui provides the full-screen terminal chat view.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/omochice/roster-chat/internal/chat"
	"github.com/omochice/roster-chat/pkg/protocol"
)

type (
	lineMsg         struct{ ev protocol.ChatEvent }
	rosterMsg       struct{ users []string }
	clearMessageMsg struct{}
	focusMessageMsg struct{}
	alertMsg        struct{ text string }
	statusMsg       struct{ ev chat.StateEvent }
	errorMsg        struct{ err error }
)

// Bridge implements chat.View on top of a running bubbletea program. UI
// changes are delivered as program messages; field reads come from a copy
// the model keeps current on every keystroke.
type Bridge struct {
	mu       sync.Mutex
	username string
	message  string
	send     func(tea.Msg)
}

// NewBridge creates a Bridge. Nothing is shown until Attach is called.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes UI changes to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) setFields(username, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.username = username
	b.message = message
}

// Username implements chat.View.
func (b *Bridge) Username() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.username
}

// MessageText implements chat.View.
func (b *Bridge) MessageText() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.message
}

// ClearMessage implements chat.View.
func (b *Bridge) ClearMessage() {
	b.mu.Lock()
	b.message = ""
	b.mu.Unlock()
	b.post(clearMessageMsg{})
}

// FocusMessage implements chat.View.
func (b *Bridge) FocusMessage() {
	b.post(focusMessageMsg{})
}

// Alert implements chat.View.
func (b *Bridge) Alert(msg string) {
	b.post(alertMsg{text: msg})
}

// ReplaceRoster implements chat.View.
func (b *Bridge) ReplaceRoster(users []string) {
	b.post(rosterMsg{users: users})
}

// AppendLine implements chat.View.
func (b *Bridge) AppendLine(ev protocol.ChatEvent) {
	b.post(lineMsg{ev: ev})
}

// StateChanged shows a session status transition. It matches Options.OnStateChange.
func (b *Bridge) StateChanged(ev chat.StateEvent) {
	b.post(statusMsg{ev: ev})
}

// Failed shows a reported session error. It matches Options.OnError.
func (b *Bridge) Failed(err error) {
	b.post(errorMsg{err: err})
}
