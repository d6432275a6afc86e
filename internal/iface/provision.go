//go:build linux

package iface

import (
	"fmt"

	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
)

// BridgeCreator is the subset of *bridge.Registry Provision needs, so
// this package does not import internal/bridge and create an import
// cycle risk with future bridge-side interface helpers.
type BridgeCreator interface {
	Track(name string)
}

// Provisioned is a fully configured tun/tap interface ready for the
// forwarding engine, plus its cleanup.
type Provisioned struct {
	Handle *Handle
	Name   string
}

// Close releases the interface descriptor. Bridge deletion is handled
// separately by the caller's bridge.Registry, since a bridge may
// outlive any single interface attached to it.
func (p *Provisioned) Close() error {
	return p.Handle.Close()
}

// Provision performs the full setup sequence spec.md §4.5 and §6
// describe: sanity check the configured frame size, create the tun/tap
// device, optionally create and join a bridge (l2 only), assign an
// address, bring the link up, and finally drop privileges if the
// process is running setuid/setgid. All of the CAP_NET_ADMIN-requiring
// work happens before the privilege drop at the end.
func Provision(cfg config.Session, bridges BridgeCreator) (*Provisioned, error) {
	if err := CheckFrameSize(cfg.Mode, cfg.MaxFrameSize); err != nil {
		return nil, err
	}

	h, err := OpenTun(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.BridgeName != "" {
		// A bridge that already exists is left alone: it is neither
		// recreated nor tracked for cleanup, so exiting never deletes
		// a bridge this process didn't create, per spec.md §4.5/§9.
		if _, err := GetIndex(cfg.BridgeName); err != nil {
			if err := CreateBridge(cfg.BridgeName); err != nil {
				_ = h.Close()
				return nil, err
			}
			bridges.Track(cfg.BridgeName)
		}
		if err := LinkUp(cfg.BridgeName); err != nil {
			_ = h.Close()
			return nil, err
		}
		if err := AddBridgeMember(cfg.BridgeName, h.Name); err != nil {
			_ = h.Close()
			return nil, err
		}
		for _, member := range cfg.BridgeMembers {
			if err := AddBridgeMember(cfg.BridgeName, member); err != nil {
				_ = h.Close()
				return nil, fmt.Errorf("iface: attach %s to %s: %w", member, cfg.BridgeName, err)
			}
		}
	}

	if cfg.InterfaceAddress.IsValid() {
		if err := AssignAddress(h.Name, cfg.InterfaceAddress); err != nil {
			_ = h.Close()
			return nil, err
		}
	}

	if err := LinkUp(h.Name); err != nil {
		_ = h.Close()
		return nil, err
	}

	// Drop back to the invoking user's real ids whenever they differ
	// from the effective ones (i.e. this binary is setuid/setgid
	// root), matching the original's getuid()/geteuid() comparison.
	// There is no flag for this: it always runs once the
	// CAP_NET_ADMIN-requiring setup above is done.
	ruid, euid := unix.Getuid(), unix.Geteuid()
	rgid, egid := unix.Getgid(), unix.Getegid()
	if ruid != euid || rgid != egid {
		if err := SetOwner(h.FD, ruid, rgid); err != nil {
			_ = h.Close()
			return nil, err
		}
		if err := DropPrivileges(ruid, rgid); err != nil {
			_ = h.Close()
			return nil, err
		}
	}

	return &Provisioned{Handle: h, Name: h.Name}, nil
}
