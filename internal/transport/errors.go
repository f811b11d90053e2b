package transport

import "errors"

// ErrClosed is returned by Send after the session has ended.
var ErrClosed = errors.New("transport: session closed")
