package transport

import (
	"context"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
)

// Connect dials cfg.PeerAddress:cfg.PeerPort and returns the
// connection's descriptor as both trIn and trOut, with IPV6_V6ONLY
// set according to cfg.Family when an IPv6 socket is used.
func Connect(ctx context.Context, cfg config.Session) (trIn, trOut int, closeFn func() error, err error) {
	network := "tcp"
	switch cfg.Family {
	case config.FamilyV4:
		network = "tcp4"
	case config.FamilyV6:
		network = "tcp6"
	}

	d := net.Dialer{
		Control: func(_, _ string, c syscall.RawConn) error {
			if cfg.Family != config.FamilyV6 {
				return nil
			}
			var ctrlErr error
			cerr := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_V6ONLY, 1)
			})
			if cerr != nil {
				return cerr
			}
			return ctrlErr
		},
	}

	addr := net.JoinHostPort(cfg.PeerAddress, fmt.Sprintf("%d", cfg.PeerPort))
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return -1, -1, nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		_ = conn.Close()
		return -1, -1, nil, fmt.Errorf("transport: unexpected connection type %T", conn)
	}
	f, err := tc.File()
	_ = conn.Close()
	if err != nil {
		return -1, -1, nil, fmt.Errorf("transport: connection fd: %w", err)
	}
	fd := int(f.Fd())
	return fd, fd, f.Close, nil
}
