package chat

// event is anything the Session event loop reacts to.
type event interface{}

type connectRequest struct {
	username string
}

type sendRequest struct{}

type handshakeTimer struct{}

type dialFailed struct {
	h   *handle
	err error
}

type transportOpened struct {
	h *handle
}

type frameReceived struct {
	h    *handle
	data []byte
}

type transportClosed struct {
	h   *handle
	err error
}

type sendFailed struct {
	h   *handle
	err error
}
