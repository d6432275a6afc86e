//go:build linux

// Package engine implements the framed forwarding engine: the single-
// threaded, cooperative event loop that moves bytes between a tun/tap
// interface descriptor and a byte-stream transport, per spec §4.4.
package engine

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
	"tunbridge/internal/logging"
	"tunbridge/internal/wire"
)

// Engine runs one forwarding session to completion.
type Engine struct {
	state  *State
	logger logging.Logger
}

// New sets up session state for a forwarding engine over the given
// descriptors. It sets all three descriptors non-blocking and seeds
// the transport-send buffer with the local parameter unit, per
// spec.md §4.4 Initialization. trIn and trOut may alias (e.g. a
// single connected socket).
func New(cfg config.Session, ifFD, trIn, trOut int, logger logging.Logger) (*Engine, error) {
	if err := setNonblocking(ifFD, trIn, trOut); err != nil {
		return nil, fmt.Errorf("engine: set non-blocking: %w", err)
	}
	st, err := NewState(cfg, ifFD, trIn, trOut)
	if err != nil {
		return nil, err
	}
	return &Engine{state: st, logger: logger}, nil
}

// Run executes the event loop until end-of-stream, quiescence (both
// terminate successfully, returning nil), a fatal I/O error, or a
// protocol error. ctx cancellation (if ctx carries a Done channel)
// terminates the loop promptly via a self-pipe registered alongside
// the session's own descriptors.
func (e *Engine) Run(ctx context.Context) error {
	cancelFD, cancelCleanup, err := e.armCancellation(ctx)
	if err != nil {
		return fmt.Errorf("engine: arm cancellation: %w", err)
	}
	defer cancelCleanup()

	p := &poller{cancelFD: cancelFD}

	for {
		if err := e.state.packetizeOutbound(); err != nil {
			return fmt.Errorf("engine: packetize outbound: %w", err)
		}
		if err := e.state.depacketizeInbound(e.logger); err != nil {
			if errors.Is(err, ErrProtocol) {
				return ErrProtocol
			}
			return fmt.Errorf("engine: depacketize inbound: %w", err)
		}

		w := e.state.wants()
		if !w.any() {
			return nil // quiesced, no possible progress: successful termination
		}

		ready, cancelled, err := p.wait(e.state.ifFD, e.state.trIn, e.state.trOut, w)
		if err != nil {
			return fmt.Errorf("engine: readiness wait: %w", err)
		}
		if cancelled {
			return ctx.Err()
		}

		if err := e.performOneIO(ready); err != nil {
			if errors.Is(err, ErrEndOfStream) {
				return nil
			}
			return err
		}
	}
}

// performOneIO acts on exactly one ready descriptor, in the priority
// order spec.md §4.4 Phase D specifies: tr read, if write, if read,
// tr write.
func (e *Engine) performOneIO(ready want) error {
	switch {
	case ready.trInRead:
		return e.doTransportRead()
	case ready.ifWrite:
		return e.doInterfaceWrite()
	case ready.ifRead:
		return e.doInterfaceRead()
	case ready.trOutWrite:
		return e.doTransportWrite()
	}
	return nil
}

func (e *Engine) doTransportRead() error {
	s := e.state
	n, err := rawRead(s.trIn, s.trr.Writable())
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return ErrEndOfStream
		}
		if isTransient(err) {
			return nil
		}
		return fmt.Errorf("engine: transport read: %w", err)
	}
	return s.trr.Append(n)
}

func (e *Engine) doInterfaceWrite() error {
	s := e.state
	unit, ok := wire.TryTakeUnit(s.ifw.Bytes())
	if !ok {
		return nil
	}
	_, err := rawWrite(s.ifFD, unit.Payload)
	if err != nil {
		if isTransient(err) {
			return nil
		}
		return fmt.Errorf("engine: interface write: %w", err)
	}
	// Per spec.md §4.4 and §9: a short write drops the unwritten
	// remainder along with the prefix rather than retrying it.
	return s.ifw.Drain(unit.Consumed)
}

func (e *Engine) doInterfaceRead() error {
	s := e.state
	dst := s.ifr.WritableAt(wire.PrefixLen)
	n, err := rawRead(s.ifFD, dst)
	if err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return ErrEndOfStream
		}
		if isTransient(err) {
			return nil
		}
		return fmt.Errorf("engine: interface read: %w", err)
	}
	if err := wire.EncodePrefix(s.ifr.Writable(), n); err != nil {
		return err
	}
	return s.ifr.Append(wire.PrefixLen + n)
}

func (e *Engine) doTransportWrite() error {
	s := e.state
	n, err := rawWrite(s.trOut, s.trs.Bytes())
	if err != nil {
		if isTransient(err) {
			return nil
		}
		return fmt.Errorf("engine: transport write: %w", err)
	}
	return s.trs.Drain(n)
}

// armCancellation wires ctx cancellation into the readiness wait via
// a self-pipe: a goroutine blocks on ctx.Done() and writes one byte,
// waking any in-flight epoll_wait. Returns -1 if ctx has no Done
// channel (context.Background()).
func (e *Engine) armCancellation(ctx context.Context) (fd int, cleanup func(), err error) {
	if ctx == nil || ctx.Done() == nil {
		return -1, func() {}, nil
	}
	var p [2]int
	if perr := unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); perr != nil {
		return -1, func() {}, perr
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_, _ = unix.Write(p[1], []byte{0})
		case <-done:
		}
	}()
	cleanup = func() {
		close(done)
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	}
	return p[0], cleanup, nil
}
