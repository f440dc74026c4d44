// Package transcript holds what a chat screen shows: the message history
// and the user roster.
package transcript

import (
	"fmt"
	"slices"
	"strings"

	"github.com/omochice/roster-chat/pkg/protocol"
)

// Transcript is the append-only message history plus the current roster.
// It is not safe for concurrent use.
type Transcript struct {
	lines  []protocol.ChatEvent
	roster []string
}

// New creates an empty Transcript.
func New() *Transcript {
	return &Transcript{}
}

// Append adds a line at the end of the history.
func (t *Transcript) Append(ev protocol.ChatEvent) {
	t.lines = append(t.lines, ev)
}

// ReplaceRoster swaps the whole roster for users. Order and duplicates are kept.
func (t *Transcript) ReplaceRoster(users []string) {
	t.roster = slices.Clone(users)
}

// Lines returns a copy of the history, oldest first.
func (t *Transcript) Lines() []protocol.ChatEvent {
	return slices.Clone(t.lines)
}

// Roster returns a copy of the roster.
func (t *Transcript) Roster() []string {
	return slices.Clone(t.roster)
}

// Len returns the number of history lines.
func (t *Transcript) Len() int {
	return len(t.lines)
}

// FormatLine renders ev as "[timestamp] username: content". The content is
// not altered.
func FormatLine(ev protocol.ChatEvent) string {
	return fmt.Sprintf("[%s] %s: %s", ev.Timestamp, ev.Username, ev.Content)
}

// StripControl removes control characters, including the ESC that starts a
// terminal escape sequence, so server text cannot drive the terminal.
// Tabs and newlines are kept.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, s)
}
