package memdoc

import "errors"

// ErrClosed is delivered to callbacks issued after Sandbox.Close.
var ErrClosed = errors.New("memdoc: sandbox closed")
