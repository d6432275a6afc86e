//go:build linux

package iface

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// CreateBridge creates a kernel bridge device named name. Per the
// kernel's br_ioctl_deviceless_stub, SIOCBRADDBR/SIOCBRDELBR take the
// bridge name as a raw C string pointed to directly by the ioctl
// argument, not wrapped in a struct ifreq the way most net device
// ioctls are.
func CreateBridge(name string) error {
	sock, err := controlSocket()
	if err != nil {
		return err
	}
	defer func() { _ = unix.Close(sock) }()

	cname, err := unix.BytePtrFromString(name)
	if err != nil {
		return fmt.Errorf("iface: invalid bridge name %q: %w", name, err)
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(sock), unix.SIOCBRADDBR, uintptr(unsafe.Pointer(cname)))
	if errno != 0 {
		return fmt.Errorf("iface: SIOCBRADDBR %s: %w", name, errno)
	}
	return nil
}

// DeleteBridge brings a kernel bridge device created by CreateBridge
// down and then removes it (the kernel refuses to delete a bridge
// that is still up).
func DeleteBridge(name string) error {
	sock, err := controlSocket()
	if err != nil {
		return err
	}
	defer func() { _ = unix.Close(sock) }()

	ifr, err := unix.NewIfreq(name)
	if err != nil {
		return fmt.Errorf("iface: invalid bridge name %q: %w", name, err)
	}
	if err := unix.IoctlIfreq(sock, unix.SIOCGIFFLAGS, ifr); err != nil {
		return fmt.Errorf("iface: SIOCGIFFLAGS %s: %w", name, err)
	}
	ifr.SetUint16(ifr.Uint16() &^ unix.IFF_UP)
	if err := unix.IoctlIfreq(sock, unix.SIOCSIFFLAGS, ifr); err != nil {
		return fmt.Errorf("iface: SIOCSIFFLAGS %s: %w", name, err)
	}

	cname, err := unix.BytePtrFromString(name)
	if err != nil {
		return fmt.Errorf("iface: invalid bridge name %q: %w", name, err)
	}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(sock), unix.SIOCBRDELBR, uintptr(unsafe.Pointer(cname)))
	if errno != 0 {
		return fmt.Errorf("iface: SIOCBRDELBR %s: %w", name, errno)
	}
	return nil
}

// AddBridgeMember attaches the interface named memberName to the
// bridge named bridgeName, via SIOCBRADDIF on a regular ifreq whose
// union slot carries the member's ifindex. Attaching a member that is
// already attached returns EBUSY from the kernel; that case is
// swallowed so re-provisioning the same bridge membership is
// idempotent, per spec.md §9.
func AddBridgeMember(bridgeName, memberName string) error {
	sock, err := controlSocket()
	if err != nil {
		return err
	}
	defer func() { _ = unix.Close(sock) }()

	idx, err := GetIndex(memberName)
	if err != nil {
		return err
	}

	ifr, err := unix.NewIfreq(bridgeName)
	if err != nil {
		return fmt.Errorf("iface: invalid bridge name %q: %w", bridgeName, err)
	}
	ifr.SetUint32(uint32(idx))
	if err := unix.IoctlIfreq(sock, unix.SIOCBRADDIF, ifr); err != nil {
		if errors.Is(err, unix.EBUSY) {
			return nil
		}
		return fmt.Errorf("iface: SIOCBRADDIF %s <- %s: %w", bridgeName, memberName, err)
	}
	return nil
}
