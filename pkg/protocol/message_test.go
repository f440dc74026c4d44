package protocol_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/omochice/roster-chat/pkg/protocol"
)

func TestOutboundFrame_Encode(t *testing.T) {
	tests := []struct {
		name  string
		frame protocol.OutboundFrame
		want  string
	}{
		{
			name:  "identity frame",
			frame: protocol.IdentityFrame{Username: "alice"},
			want:  `{"username":"alice"}`,
		},
		{
			name:  "chat frame",
			frame: protocol.ChatFrame{Content: "Hello, World!"},
			want:  `{"content":"Hello, World!"}`,
		},
		{
			name:  "chat frame keeps markup",
			frame: protocol.ChatFrame{Content: "<b>x</b>"},
			want:  `{"content":"<b>x</b>"}`,
		},
		{
			name:  "empty chat frame",
			frame: protocol.ChatFrame{},
			want:  `{"content":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.frame.Encode()
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Encode() = %s, want %s", data, tt.want)
			}
		})
	}
}

func TestInboundFrame_Decode(t *testing.T) {
	tests := []struct {
		name string
		data string
		want protocol.InboundFrame
	}{
		{
			name: "roster update",
			data: `{"content": "User list update", "user_list": ["alice", "bob", "alice"]}`,
			want: protocol.InboundFrame{
				Kind:   protocol.KindRoster,
				Roster: protocol.RosterUpdate{Users: []string{"alice", "bob", "alice"}},
			},
		},
		{
			name: "empty roster update",
			data: `{"content": "User list update", "user_list": []}`,
			want: protocol.InboundFrame{
				Kind:   protocol.KindRoster,
				Roster: protocol.RosterUpdate{Users: []string{}},
			},
		},
		{
			name: "chat event",
			data: `{"timestamp": "2024-05-01 10:00:00", "username": "bob", "content": "hi"}`,
			want: protocol.InboundFrame{
				Kind: protocol.KindChat,
				Chat: protocol.ChatEvent{Timestamp: "2024-05-01 10:00:00", Username: "bob", Content: "hi"},
			},
		},
		{
			name: "chat event from history replay carries extra fields",
			data: `{"message_id": 3, "timestamp": "t", "username": "carol#a1b2c3", "content": "old"}`,
			want: protocol.InboundFrame{
				Kind: protocol.KindChat,
				Chat: protocol.ChatEvent{Timestamp: "t", Username: "carol#a1b2c3", Content: "old"},
			},
		},
		{
			name: "system line",
			data: `{"content": "dave#ffffff joined the chat", "timestamp": "t", "username": "system"}`,
			want: protocol.InboundFrame{
				Kind: protocol.KindChat,
				Chat: protocol.ChatEvent{Timestamp: "t", Username: "system", Content: "dave#ffffff joined the chat"},
			},
		},
		{
			name: "markup is kept verbatim",
			data: `{"timestamp": "t", "username": "eve", "content": "<b>x</b>"}`,
			want: protocol.InboundFrame{
				Kind: protocol.KindChat,
				Chat: protocol.ChatEvent{Timestamp: "t", Username: "eve", Content: "<b>x</b>"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got protocol.InboundFrame
			if err := got.Decode([]byte(tt.data)); err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInboundFrame_Decode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "plain text greeting", data: "Connected as alice#1a2b3c"},
		{name: "empty payload", data: ""},
		{name: "json array", data: `["a"]`},
		{name: "json null", data: `null`},
		{name: "missing content", data: `{"username": "bob"}`},
		{name: "content is not a string", data: `{"content": 5}`},
		{name: "username is not a string", data: `{"content": "x", "username": 5}`},
		{name: "roster without user_list", data: `{"content": "User list update"}`},
		{name: "roster with null user_list", data: `{"content": "User list update", "user_list": null}`},
		{name: "roster with non-string users", data: `{"content": "User list update", "user_list": [1, 2]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f protocol.InboundFrame
			err := f.Decode([]byte(tt.data))
			if err == nil {
				t.Fatalf("Decode(%q) error = nil, want malformed", tt.data)
			}
			if !errors.Is(err, protocol.ErrMalformedFrame) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformedFrame", tt.data, err)
			}
		})
	}
}
