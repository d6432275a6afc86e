package engine

import (
	"errors"

	"golang.org/x/sys/unix"
)

// ErrEndOfStream indicates a clean end-of-stream on the interface or
// the transport; the session terminates successfully.
var ErrEndOfStream = errors.New("engine: end of stream")

// ErrProtocol indicates a protocol violation (a second parameter unit
// received on one direction); the session terminates with failure.
var ErrProtocol = errors.New("engine: protocol error")

// ErrQuiesced names the state where no descriptor can make forward
// progress. Engine.Run reports that state by returning nil and never
// returns this value.
var ErrQuiesced = errors.New("engine: quiesced")

// isTransient reports whether err is one of the retry-and-continue
// errno values spec.md §7 names.
func isTransient(err error) bool {
	return errors.Is(err, unix.EAGAIN) ||
		errors.Is(err, unix.EWOULDBLOCK) ||
		errors.Is(err, unix.EINTR) ||
		errors.Is(err, unix.EINPROGRESS)
}
