// Package chat provides the client-side chat session shared by all transports and UIs.
package chat

import "context"

// Conn abstracts one client connection to the chat server.
// This interface isolates transport details from session logic.
type Conn interface {
	// Read reads a single message frame (JSON text).
	// Returns an error once the connection is closed, for any reason.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single message frame (JSON text).
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

// Dialer opens connections. Dial returns only after the opening handshake
// has completed, so a returned Conn is open.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}

// DialerFunc adapts a plain function to Dialer.
type DialerFunc func(ctx context.Context, endpoint string) (Conn, error)

// Dial implements Dialer.
func (f DialerFunc) Dial(ctx context.Context, endpoint string) (Conn, error) {
	return f(ctx, endpoint)
}
