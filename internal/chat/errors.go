package chat

import "errors"

var (
	// ErrMissingUsername is reported when a connect is attempted without a username.
	ErrMissingUsername = errors.New("missing username")

	// ErrHandshakeIncomplete is reported when a message typed while
	// disconnected is dropped because the transport did not open in time.
	ErrHandshakeIncomplete = errors.New("handshake not complete, message dropped")

	// ErrConnectFailed is reported when a transport cannot be opened.
	ErrConnectFailed = errors.New("failed to connect to server")

	// ErrNotConnected is reported when a frame is sent with no open transport.
	ErrNotConnected = errors.New("not connected to server")

	// ErrSendQueueFull is reported when the outgoing queue of a transport is full.
	ErrSendQueueFull = errors.New("send queue full")
)
