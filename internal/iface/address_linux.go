//go:build linux

package iface

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"unsafe"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
)

// AssignAddress configures prefix on the named interface, per
// spec.md §4.5. IPv4 assignment also sets the netmask and (for
// prefixes shorter than /31) the broadcast address; point-to-point
// and host prefixes (/31, /32, /127, /128) have no broadcast address
// and none is set.
func AssignAddress(name string, prefix netip.Prefix) error {
	if !prefix.IsValid() {
		return nil
	}
	if prefix.Addr().Is4() {
		return assignIPv4(name, prefix)
	}
	return assignIPv6(name, prefix)
}

func assignIPv4(name string, prefix netip.Prefix) error {
	// A /31 or /32 has no network/broadcast address to forbid (RFC
	// 3021); anything wider must not be assigned either boundary
	// address of its own prefix.
	if prefix.Bits() < 31 {
		net := networkIPv4(prefix)
		bcast := broadcastIPv4(prefix)
		addr := prefix.Addr().As4()
		if addr == net {
			return fmt.Errorf("iface: address %s is the network address of %s", prefix.Addr(), prefix)
		}
		if addr == bcast {
			return fmt.Errorf("iface: address %s is the broadcast address of %s", prefix.Addr(), prefix)
		}
	}

	sock, err := controlSocket()
	if err != nil {
		return err
	}
	defer func() { _ = unix.Close(sock) }()

	addrIfr, err := unix.NewIfreq(name)
	if err != nil {
		return fmt.Errorf("iface: invalid interface name %q: %w", name, err)
	}
	if err := addrIfr.SetInet4Addr(prefix.Addr().AsSlice()); err != nil {
		return fmt.Errorf("iface: set address: %w", err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCSIFADDR, addrIfr); err != nil {
		return fmt.Errorf("iface: SIOCSIFADDR %s: %w", name, err)
	}

	maskIfr, err := unix.NewIfreq(name)
	if err != nil {
		return err
	}
	mask := netMaskIPv4(prefix.Bits())
	if err := maskIfr.SetInet4Addr(mask[:]); err != nil {
		return fmt.Errorf("iface: set netmask: %w", err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCSIFNETMASK, maskIfr); err != nil {
		return fmt.Errorf("iface: SIOCSIFNETMASK %s: %w", name, err)
	}

	// A /31 or /32 prefix has no broadcast address (RFC 3021); leave
	// the interface's existing value (zero) untouched.
	if prefix.Bits() >= 31 {
		return nil
	}
	bcastIfr, err := unix.NewIfreq(name)
	if err != nil {
		return err
	}
	bcast := broadcastIPv4(prefix)
	if err := bcastIfr.SetInet4Addr(bcast[:]); err != nil {
		return fmt.Errorf("iface: set broadcast: %w", err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCSIFBRDADDR, bcastIfr); err != nil {
		return fmt.Errorf("iface: SIOCSIFBRDADDR %s: %w", name, err)
	}

	return setBroadcastFlag(sock, name)
}

// setBroadcastFlag ORs IFF_BROADCAST into the interface's flags, the
// same read-modify-write round trip LinkUp uses for IFF_UP. Only
// called for prefixes that actually have a broadcast address.
func setBroadcastFlag(sock int, name string) error {
	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return fmt.Errorf("iface: invalid interface name %q: %w", name, err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCGIFFLAGS, ifr); err != nil {
		return fmt.Errorf("iface: SIOCGIFFLAGS %s: %w", name, err)
	}
	flags := ifr.Uint16()
	flags |= unix.IFF_BROADCAST
	ifr.SetUint16(flags)
	if err := unix.IoctlIfreq(sock, unix.SIOCSIFFLAGS, ifr); err != nil {
		return fmt.Errorf("iface: SIOCSIFFLAGS %s: %w", name, err)
	}
	return nil
}

func netMaskIPv4(bits int) (out [4]byte) {
	var m uint32
	if bits > 0 {
		m = ^uint32(0) << (32 - bits)
	}
	binary.BigEndian.PutUint32(out[:], m)
	return out
}

func networkIPv4(prefix netip.Prefix) (out [4]byte) {
	addr := prefix.Addr().As4()
	mask := netMaskIPv4(prefix.Bits())
	for i := range out {
		out[i] = addr[i] & mask[i]
	}
	return out
}

func broadcastIPv4(prefix netip.Prefix) (out [4]byte) {
	addr := prefix.Addr().As4()
	mask := netMaskIPv4(prefix.Bits())
	for i := range out {
		out[i] = addr[i] | ^mask[i]
	}
	return out
}

// in6Ifreq mirrors the kernel's struct in6_ifreq, used by
// SIOCSIFADDR/SIOCDIFADDR on an AF_INET6 socket. golang.org/x/sys/unix
// has no typed helper for it (unix.Ifreq models the IPv4-shaped
// struct ifreq), so it is declared directly, matching
// include/uapi/linux/ipv6.h.
type in6Ifreq struct {
	Addr      [16]byte
	PrefixLen uint32
	IfIndex   int32
}

func assignIPv6(name string, prefix netip.Prefix) error {
	sock, err := unix.Socket(unix.AF_INET6, unix.SOCK_DGRAM, 0)
	if err != nil {
		return fmt.Errorf("iface: inet6 control socket: %w", err)
	}
	defer func() { _ = unix.Close(sock) }()

	idx, err := GetIndex(name)
	if err != nil {
		return err
	}

	req := in6Ifreq{
		PrefixLen: uint32(prefix.Bits()),
		IfIndex:   idx,
	}
	req.Addr = prefix.Addr().As16()

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(sock), unix.SIOCSIFADDR, uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		return fmt.Errorf("iface: SIOCSIFADDR(inet6) %s: %w", name, errno)
	}
	return nil
}

// CheckFrameSize performs the one-time startup sanity check spec.md
// §4.5 and §9 call for: the configured max frame size must be able to
// hold at least a minimal IP header for the interface's mode, so the
// engine never negotiates a ceiling too small to carry any packet.
// This is the only place header layout is consulted; the engine
// itself never inspects frame contents.
func CheckFrameSize(mode config.InterfaceMode, maxFrameSize int) error {
	// An l3 interface carries both v4 and v6 packets; the floor is
	// the smaller of the two minimal header sizes since that is the
	// smallest frame a real packet could ever need. l2 needs room for
	// an Ethernet header on top of that same payload floor.
	minHeader := ipv4.HeaderLen
	if ipv6.HeaderLen < minHeader {
		minHeader = ipv6.HeaderLen
	}
	min := minHeader
	if mode == config.ModeL2 {
		min = 14 + minHeader // Ethernet header; x/net has no L2 constant
	}
	if maxFrameSize < min {
		return fmt.Errorf("iface: max-frame-size %d too small for %s (need >= %d)", maxFrameSize, mode, min)
	}
	return nil
}
