package transport

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
	"tunbridge/internal/logging"
)

// EngineFunc runs one forwarding session over the given transport
// descriptors until it terminates. Listen calls it once per accepted
// connection, in its own goroutine.
type EngineFunc func(ctx context.Context, trIn, trOut int) error

// Listen accepts connections on cfg.PeerAddress:cfg.PeerPort (bind
// address may be empty for "any") and runs run once per accepted
// connection, reaping completions with an errgroup so a single
// session's fatal error doesn't take down sessions still in progress.
// Listen returns when ctx is cancelled or the listener itself fails.
func Listen(ctx context.Context, cfg config.Session, logger logging.Logger, run EngineFunc) error {
	network := "tcp"
	switch cfg.Family {
	case config.FamilyV4:
		network = "tcp4"
	case config.FamilyV6:
		network = "tcp6"
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}

	addr := net.JoinHostPort(cfg.PeerAddress, fmt.Sprintf("%d", cfg.PeerPort))
	ln, err := lc.Listen(ctx, network, addr)
	if err != nil {
		return fmt.Errorf("transport: listen %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	g, gctx := errgroup.WithContext(ctx)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return fmt.Errorf("transport: accept: %w", err)
		}

		tc, ok := conn.(*net.TCPConn)
		if !ok {
			_ = conn.Close()
			continue
		}
		f, err := tc.File()
		_ = conn.Close() // f holds an independent dup of the fd
		if err != nil {
			logger.Printf("transport: connection fd: %v", err)
			continue
		}
		remote := tc.RemoteAddr()

		g.Go(func() error {
			defer func() { _ = f.Close() }()
			fd := int(f.Fd())
			if err := run(gctx, fd, fd); err != nil {
				logger.Printf("transport: session %s: %v", remote, err)
			}
			return nil
		})
	}

	return g.Wait()
}
