package config

import (
	"flag"
	"fmt"
	"net/netip"
	"strings"
)

// ParseArgs parses the command-line surface spec.md §6 enumerates and
// returns a validated Session. Argument parsing itself sits outside
// the forwarding engine's core, but the surface must exist for the
// engine to be reachable from a real invocation.
func ParseArgs(args []string) (Session, error) {
	fs := flag.NewFlagSet("tunbridge", flag.ContinueOnError)

	var (
		ifName       string
		ifAddress    string
		tunnelMode   string
		bridgeName   string
		bridgeMembs  string
		transferMode string
		address      string
		port         int
		ipv4         bool
		ipv6         bool
		compress     bool
		maxFrameSize int
		ifBufSize    int
		trBufSize    int
	)

	fs.StringVar(&ifName, "ifname", "", "tun/tap interface name")
	fs.StringVar(&ifName, "n", "", "shorthand for -ifname")
	fs.StringVar(&ifAddress, "ifaddress", "", "interface address, optionally addr/bits")
	fs.StringVar(&ifAddress, "a", "", "shorthand for -ifaddress")
	fs.StringVar(&tunnelMode, "tunnel-mode", "l3", "l3 or l2")
	fs.StringVar(&tunnelMode, "m", "l3", "shorthand for -tunnel-mode")
	fs.StringVar(&bridgeName, "bridge-name", "", "bridge to create and attach the interface to (l2 only)")
	fs.StringVar(&bridgeName, "b", "", "shorthand for -bridge-name")
	fs.StringVar(&bridgeMembs, "bridge-members", "", "comma-separated interface names to enslave to the bridge")
	fs.StringVar(&bridgeMembs, "i", "", "shorthand for -bridge-members")
	fs.StringVar(&transferMode, "transfer-mode", "stdio", "stdio, server, or client")
	fs.StringVar(&transferMode, "t", "stdio", "shorthand for -transfer-mode")
	fs.StringVar(&address, "address", "", "peer address (server: bind, client: connect)")
	fs.StringVar(&address, "l", "", "shorthand for -address")
	// 0 means "not given"; DefaultPort is only applied below once the
	// transfer mode is known, so a stdio session (the common
	// no-flags invocation) never ends up with a nonzero PeerPort.
	fs.IntVar(&port, "port", 0, "transport port (default 19876 for server/client)")
	fs.IntVar(&port, "p", 0, "shorthand for -port")
	fs.BoolVar(&ipv4, "ipv4", false, "prefer IPv4")
	fs.BoolVar(&ipv4, "4", false, "shorthand for -ipv4")
	fs.BoolVar(&ipv6, "ipv6", false, "prefer IPv6")
	fs.BoolVar(&ipv6, "6", false, "shorthand for -ipv6")
	fs.BoolVar(&compress, "compress", false, "enable Snappy compression")
	fs.BoolVar(&compress, "c", false, "shorthand for -compress")
	fs.IntVar(&maxFrameSize, "max-frame-size", DefaultMaxFrameSize, "maximum frame size in bytes")
	fs.IntVar(&maxFrameSize, "F", DefaultMaxFrameSize, "shorthand for -max-frame-size")
	fs.IntVar(&ifBufSize, "ifbuffer-size", 0, "interface-side ring buffer capacity override")
	fs.IntVar(&ifBufSize, "I", 0, "shorthand for -ifbuffer-size")
	fs.IntVar(&trBufSize, "trbuffer-size", 0, "transport-side ring buffer capacity override")
	fs.IntVar(&trBufSize, "T", 0, "shorthand for -trbuffer-size")

	if err := rejectDuplicateFlags(fs, args); err != nil {
		return Session{}, err
	}
	if err := fs.Parse(args); err != nil {
		return Session{}, err
	}

	mode, err := parseMode(tunnelMode)
	if err != nil {
		return Session{}, err
	}
	role, err := parseRole(transferMode)
	if err != nil {
		return Session{}, err
	}
	family := FamilyAny
	switch {
	case ipv4 && ipv6:
		return Session{}, fmt.Errorf("config: -4 and -6 are mutually exclusive")
	case ipv4:
		family = FamilyV4
	case ipv6:
		family = FamilyV6
	}

	var prefix netip.Prefix
	if ifAddress != "" {
		prefix, err = parseIfAddress(ifAddress)
		if err != nil {
			return Session{}, err
		}
	}

	var members []string
	if bridgeMembs != "" {
		members = strings.Split(bridgeMembs, ",")
	}

	if role != RoleStdio && port == 0 {
		port = DefaultPort
	}

	s := Session{
		InterfaceName:    ifName,
		BridgeName:       bridgeName,
		BridgeMembers:    members,
		InterfaceAddress: prefix,
		Mode:             mode,
		Role:             role,
		PeerAddress:      address,
		PeerPort:         port,
		Family:           family,
		Compress:         compress,
		MaxFrameSize:     maxFrameSize,
		IfBufferSize:     ifBufSize,
		TrBufferSize:     trBufSize,
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}

// rejectDuplicateFlags enforces spec.md §6's "duplicate options are
// rejected" rule, which flag.FlagSet does not do on its own (it just
// keeps the last value). A short flag and its long form share one
// flag.Value, so giving both (-n and -ifname) counts as a duplicate.
func rejectDuplicateFlags(fs *flag.FlagSet, args []string) error {
	seen := make(map[any]bool)
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			continue
		}
		name := strings.TrimLeft(a, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		var key any = name
		if f := fs.Lookup(name); f != nil {
			key = f.Value
		}
		if seen[key] {
			return fmt.Errorf("config: duplicate option -%s", name)
		}
		seen[key] = true
	}
	return nil
}

func parseMode(s string) (InterfaceMode, error) {
	switch strings.ToLower(s) {
	case "l3":
		return ModeL3, nil
	case "l2":
		return ModeL2, nil
	default:
		return 0, fmt.Errorf("config: invalid tunnel mode %q", s)
	}
}

func parseRole(s string) (TransportRole, error) {
	switch strings.ToLower(s) {
	case "stdio":
		return RoleStdio, nil
	case "server":
		return RoleListening, nil
	case "client":
		return RoleConnecting, nil
	default:
		return 0, fmt.Errorf("config: invalid transfer mode %q", s)
	}
}

// parseIfAddress parses addr/bits, defaulting to a host prefix
// (/32 or /128) when bits is absent, per spec.md §4.5.
func parseIfAddress(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, fmt.Errorf("config: invalid interface address %q: %w", s, err)
		}
		return p, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("config: invalid interface address %q: %w", s, err)
	}
	bits := 32
	if addr.Is6() {
		bits = 128
	}
	return netip.PrefixFrom(addr, bits), nil
}
