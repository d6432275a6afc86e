//go:build linux

package iface

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// controlSocket opens a throwaway AF_INET datagram socket used only
// as a handle for ifreq-style ioctls, per the convention the teacher's
// PAL layer uses for link and address configuration.
func controlSocket() (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return -1, fmt.Errorf("iface: control socket: %w", err)
	}
	return fd, nil
}

// LinkUp brings the named interface administratively up.
func LinkUp(name string) error {
	sock, err := controlSocket()
	if err != nil {
		return err
	}
	defer func() { _ = unix.Close(sock) }()

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return fmt.Errorf("iface: invalid interface name %q: %w", name, err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCGIFFLAGS, ifr); err != nil {
		return fmt.Errorf("iface: SIOCGIFFLAGS %s: %w", name, err)
	}
	flags := ifr.Uint16()
	flags |= unix.IFF_UP
	ifr.SetUint16(flags)
	if err := unix.IoctlIfreq(sock, unix.SIOCSIFFLAGS, ifr); err != nil {
		return fmt.Errorf("iface: SIOCSIFFLAGS %s: %w", name, err)
	}
	return nil
}

// GetIndex resolves the kernel ifindex of the named interface, needed
// to attach it to a bridge via SIOCBRADDIF.
func GetIndex(name string) (int32, error) {
	sock, err := controlSocket()
	if err != nil {
		return 0, err
	}
	defer func() { _ = unix.Close(sock) }()

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return 0, fmt.Errorf("iface: invalid interface name %q: %w", name, err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCGIFINDEX, ifr); err != nil {
		return 0, fmt.Errorf("iface: SIOCGIFINDEX %s: %w", name, err)
	}
	return int32(ifr.Uint32()), nil
}
