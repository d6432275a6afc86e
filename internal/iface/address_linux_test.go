//go:build linux

package iface

import (
	"net/netip"
	"testing"

	"tunbridge/internal/config"
)

func TestNetMaskIPv4(t *testing.T) {
	cases := []struct {
		bits int
		want [4]byte
	}{
		{24, [4]byte{255, 255, 255, 0}},
		{32, [4]byte{255, 255, 255, 255}},
		{0, [4]byte{0, 0, 0, 0}},
		{30, [4]byte{255, 255, 255, 252}},
	}
	for _, c := range cases {
		if got := netMaskIPv4(c.bits); got != c.want {
			t.Errorf("netMaskIPv4(%d) = %v, want %v", c.bits, got, c.want)
		}
	}
}

func TestBroadcastIPv4(t *testing.T) {
	prefix := netip.MustParsePrefix("192.168.1.10/24")
	want := [4]byte{192, 168, 1, 255}
	if got := broadcastIPv4(prefix); got != want {
		t.Errorf("broadcastIPv4(%v) = %v, want %v", prefix, got, want)
	}
}

func TestNetworkIPv4(t *testing.T) {
	prefix := netip.MustParsePrefix("192.168.1.10/24")
	want := [4]byte{192, 168, 1, 0}
	if got := networkIPv4(prefix); got != want {
		t.Errorf("networkIPv4(%v) = %v, want %v", prefix, got, want)
	}
}

func TestAssignIPv4RejectsNetworkAndBroadcastAddress(t *testing.T) {
	// assignIPv4 opens a real control socket, so only the boundary
	// check ahead of that is exercised here; the interface name is
	// never used.
	if err := assignIPv4("tunbridge-test0", netip.MustParsePrefix("192.168.1.0/24")); err == nil {
		t.Fatal("expected error assigning the network address of a /24")
	}
	if err := assignIPv4("tunbridge-test0", netip.MustParsePrefix("192.168.1.255/24")); err == nil {
		t.Fatal("expected error assigning the broadcast address of a /24")
	}
}

func TestCheckFrameSizeRejectsTooSmall(t *testing.T) {
	if err := CheckFrameSize(config.ModeL3, 10); err == nil {
		t.Fatal("expected error for a frame size too small to hold an IPv4 header")
	}
	if err := CheckFrameSize(config.ModeL3, 1500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckFrameSize(config.ModeL2, 10); err == nil {
		t.Fatal("expected error for an l2 frame size too small for an Ethernet+IP header")
	}
}
