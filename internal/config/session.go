// Package config defines the immutable session configuration the
// rest of the module is built around, and the command-line surface
// that produces it.
package config

import (
	"fmt"
	"net/netip"

	"tunbridge/internal/wire"
)

// InterfaceMode mirrors wire.InterfaceMode at the configuration
// boundary so callers outside internal/wire don't need to import it
// just to pick l2 vs l3.
type InterfaceMode = wire.InterfaceMode

const (
	ModeL3 = wire.ModeL3
	ModeL2 = wire.ModeL2
)

// TransportRole selects how the transport descriptors are obtained.
type TransportRole int

const (
	RoleStdio TransportRole = iota
	RoleListening
	RoleConnecting
)

func (r TransportRole) String() string {
	switch r {
	case RoleStdio:
		return "stdio"
	case RoleListening:
		return "server"
	case RoleConnecting:
		return "client"
	default:
		return "unknown"
	}
}

// IPFamily is the address-family preference for the transport socket.
type IPFamily int

const (
	FamilyAny IPFamily = iota
	FamilyV4
	FamilyV6
)

const (
	// DefaultMaxFrameSize matches the on-wire length prefix's natural
	// ceiling and the CLI default.
	DefaultMaxFrameSize = wire.MaxUnitLen
	MinMaxFrameSize     = 128
	MaxMaxFrameSize     = wire.MaxUnitLen
	DefaultPort         = 19876
)

// Session is the immutable configuration produced by ParseArgs (or the
// interactive prompt) and consumed by interface provisioning, the
// forwarding engine and its other collaborators.
type Session struct {
	InterfaceName    string
	BridgeName       string
	BridgeMembers    []string
	InterfaceAddress netip.Prefix // zero value means "no address assignment"
	Mode             InterfaceMode
	Role             TransportRole
	PeerAddress      string // host, resolved by the transport collaborator
	PeerPort         int
	Family           IPFamily
	Compress         bool
	MaxFrameSize     int
	IfBufferSize     int // 0 means "use the default"
	TrBufferSize     int // 0 means "use the default"
}

// Validate enforces the cross-field invariants spec.md §6 names.
func (s Session) Validate() error {
	if s.MaxFrameSize < MinMaxFrameSize || s.MaxFrameSize > MaxMaxFrameSize {
		return fmt.Errorf("config: max-frame-size %d out of range [%d,%d]", s.MaxFrameSize, MinMaxFrameSize, MaxMaxFrameSize)
	}
	if s.BridgeName != "" && s.Mode == ModeL3 {
		return fmt.Errorf("config: bridge name requires tunnel mode l2")
	}
	if len(s.BridgeMembers) > 0 && s.BridgeName == "" {
		return fmt.Errorf("config: bridge members require a bridge name")
	}
	if s.Role == RoleConnecting && s.PeerAddress == "" {
		return fmt.Errorf("config: client transfer mode requires an address")
	}
	if s.Role == RoleStdio && (s.PeerAddress != "" || s.PeerPort != 0) {
		return fmt.Errorf("config: stdio transfer mode forbids address/port")
	}
	return nil
}

// InterfaceBufferCapacity resolves the configured or default
// interface-side ring buffer capacity (2x max frame size, per spec).
func (s Session) InterfaceBufferCapacity() int {
	if s.IfBufferSize > 0 {
		return s.IfBufferSize
	}
	return 2 * s.MaxFrameSize
}

// TransportBufferCapacity resolves the configured or default
// transport-side ring buffer capacity (defaults to the interface-side
// capacity, per spec).
func (s Session) TransportBufferCapacity() int {
	if s.TrBufferSize > 0 {
		return s.TrBufferSize
	}
	return s.InterfaceBufferCapacity()
}

// CompressFlag maps the boolean config flag to the wire enum.
func (s Session) CompressFlag() wire.CompressFlag {
	if s.Compress {
		return wire.CompressOn
	}
	return wire.CompressNone
}

// LocalParams builds the parameter unit this side sends at session
// start.
func (s Session) LocalParams() wire.Params {
	return wire.Params{
		Mode:         s.Mode,
		Compress:     s.CompressFlag(),
		MaxFrameSize: uint16(s.MaxFrameSize),
	}
}
