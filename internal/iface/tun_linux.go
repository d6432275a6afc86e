//go:build linux

// Package iface provisions the tun/tap interface the forwarding
// engine runs against: device creation, bringing it up, optional
// bridge membership, optional address assignment, and privilege drop
// — the collaborator contract spec.md §4.5 describes.
package iface

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
)

const tunPath = "/dev/net/tun"

// Handle is a provisioned interface descriptor plus everything
// needed to tear it down.
type Handle struct {
	File *os.File // kept alive so its fd is not closed by the GC finalizer
	FD   int
	Name string
}

// OpenTun creates (or attaches to) a tun or tap device named
// cfg.InterfaceName (kernel-assigned if empty) with packet
// information disabled, per spec.md §6.
func OpenTun(cfg config.Session) (*Handle, error) {
	f, err := os.OpenFile(tunPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("iface: open %s: %w", tunPath, err)
	}

	ifr, err := unix.NewIfreq(cfg.InterfaceName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("iface: invalid interface name %q: %w", cfg.InterfaceName, err)
	}

	var kind uint16
	if cfg.Mode == config.ModeL2 {
		kind = unix.IFF_TAP
	} else {
		kind = unix.IFF_TUN
	}
	ifr.SetUint16(kind | unix.IFF_NO_PI)

	if err := unix.IoctlIfreq(int(f.Fd()), unix.TUNSETIFF, ifr); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("iface: TUNSETIFF: %w", err)
	}

	return &Handle{File: f, FD: int(f.Fd()), Name: ifr.Name()}, nil
}

// Close releases the tun/tap file descriptor.
func (h *Handle) Close() error {
	return h.File.Close()
}
