//go:build linux

package iface

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SetOwner sets the tun/tap device's owning uid/gid via TUNSETOWNER/
// TUNSETGROUP, so the unprivileged process retains the ability to
// reopen the persistent device node after DropPrivileges below has
// given up root.
func SetOwner(fd int, uid, gid int) error {
	if err := unix.IoctlSetInt(fd, unix.TUNSETOWNER, uid); err != nil {
		return fmt.Errorf("iface: TUNSETOWNER %d: %w", uid, err)
	}
	if err := unix.IoctlSetInt(fd, unix.TUNSETGROUP, gid); err != nil {
		return fmt.Errorf("iface: TUNSETGROUP %d: %w", gid, err)
	}
	return nil
}

// DropPrivileges switches the calling process's group and user IDs to
// uid/gid (the real ids, once interface creation and bridge/address
// configuration — all of which require CAP_NET_ADMIN — are complete).
// The order matters: dropping the uid first would forfeit the
// permission needed to change the gid.
func DropPrivileges(uid, gid int) error {
	if err := unix.Setgid(gid); err != nil {
		return fmt.Errorf("iface: setgid %d: %w", gid, err)
	}
	if err := unix.Setuid(uid); err != nil {
		return fmt.Errorf("iface: setuid %d: %w", uid, err)
	}
	return nil
}
