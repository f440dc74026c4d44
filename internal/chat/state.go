package chat

// Status is the connection status of a Session.
type Status int32

const (
	// StatusDisconnected means no open transport. It is the initial status.
	StatusDisconnected Status = iota

	// StatusConnected means the current transport finished its opening
	// handshake and has not closed since.
	StatusConnected
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// StateEvent describes a status transition.
type StateEvent struct {
	ConnID string
	Old    Status
	New    Status
	Err    error // cause of a close, if any
}
