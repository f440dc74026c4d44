// Package protocol defines the JSON frames exchanged with the chat server.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RosterMarker is the content value the server uses to mark a roster snapshot.
const RosterMarker = "User list update"

// ErrMalformedFrame is returned when an inbound payload matches no known frame shape.
var ErrMalformedFrame = errors.New("malformed frame")

// OutboundFrame is a frame the client sends to the server.
type OutboundFrame interface {
	Encode() ([]byte, error)
	outbound()
}

// IdentityFrame announces the username right after the transport opens.
type IdentityFrame struct {
	Username string `json:"username"`
}

// ChatFrame carries one message typed by the user.
type ChatFrame struct {
	Content string `json:"content"`
}

// Encode encodes the frame as a JSON object.
func (f IdentityFrame) Encode() ([]byte, error) {
	return encode(f)
}

// Encode encodes the frame as a JSON object.
func (f ChatFrame) Encode() ([]byte, error) {
	return encode(f)
}

func (IdentityFrame) outbound() {}
func (ChatFrame) outbound()     {}

func encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// Kind tells which variant an InboundFrame holds.
type Kind int

const (
	KindChat Kind = iota
	KindRoster
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "CHAT"
	case KindRoster:
		return "ROSTER"
	default:
		return "UNKNOWN"
	}
}

// RosterUpdate is a full snapshot of connected usernames, in server order.
type RosterUpdate struct {
	Users []string
}

// ChatEvent is one chat line to append to the history.
type ChatEvent struct {
	Timestamp string `json:"timestamp"`
	Username  string `json:"username"`
	Content   string `json:"content"`
}

// InboundFrame is a decoded server frame. Only the field matching Kind is set.
type InboundFrame struct {
	Kind   Kind
	Roster RosterUpdate
	Chat   ChatEvent
}

// Classify maps a frame's content field to its kind. The server has no
// explicit type field, so a roster snapshot is recognised by the marker
// string alone; a chat line with exactly that text is indistinguishable.
func Classify(content string) Kind {
	if content == RosterMarker {
		return KindRoster
	}
	return KindChat
}

// Decode decodes a JSON payload into the frame.
func (f *InboundFrame) Decode(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if fields == nil {
		return fmt.Errorf("%w: not a JSON object", ErrMalformedFrame)
	}

	rawContent, ok := fields["content"]
	if !ok {
		return fmt.Errorf("%w: missing content field", ErrMalformedFrame)
	}
	var content string
	if err := json.Unmarshal(rawContent, &content); err != nil {
		return fmt.Errorf("%w: content: %v", ErrMalformedFrame, err)
	}

	switch Classify(content) {
	case KindRoster:
		rawUsers, ok := fields["user_list"]
		if !ok || bytes.Equal(bytes.TrimSpace(rawUsers), []byte("null")) {
			return fmt.Errorf("%w: roster update without user_list", ErrMalformedFrame)
		}
		var users []string
		if err := json.Unmarshal(rawUsers, &users); err != nil {
			return fmt.Errorf("%w: user_list: %v", ErrMalformedFrame, err)
		}
		if users == nil {
			users = []string{}
		}
		*f = InboundFrame{Kind: KindRoster, Roster: RosterUpdate{Users: users}}
	default:
		var ev ChatEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
		*f = InboundFrame{Kind: KindChat, Chat: ev}
	}
	return nil
}
