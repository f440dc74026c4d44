package chat

import "github.com/omochice/roster-chat/pkg/protocol"

// View is the UI surface a Session drives. The session calls it only from
// its event loop goroutine, one call at a time.
type View interface {
	// Username returns the current content of the username field.
	Username() string

	// MessageText returns the current content of the message field.
	MessageText() string

	// ClearMessage empties the message field.
	ClearMessage()

	// FocusMessage moves input focus to the message field.
	FocusMessage()

	// Alert shows a notification the user has to acknowledge.
	Alert(msg string)

	// ReplaceRoster drops every roster entry and shows users in the given order.
	ReplaceRoster(users []string)

	// AppendLine adds one line to the history and scrolls the history to its end.
	AppendLine(ev protocol.ChatEvent)
}
