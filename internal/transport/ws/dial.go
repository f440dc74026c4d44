package ws

import (
	"fmt"

	"github.com/omochice/roster-chat/internal/chat"
)

// Transport names accepted by NewDialer.
const (
	TransportNhooyr  = "nhooyr"
	TransportGorilla = "gorilla"
	TransportGobwas  = "gobwas"
)

// Transports lists every supported transport name.
var Transports = []string{TransportNhooyr, TransportGorilla, TransportGobwas}

// NewDialer returns the dialer for the named transport. An empty name
// selects nhooyr.
func NewDialer(name string) (chat.Dialer, error) {
	switch name {
	case "", TransportNhooyr:
		return Dialer{}, nil
	case TransportGorilla:
		return GorillaDialer{}, nil
	case TransportGobwas:
		return GobwasDialer{}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q (want one of %v)", name, Transports)
	}
}
