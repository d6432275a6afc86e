//go:build linux

package engine

import (
	"testing"

	"tunbridge/internal/config"
	"tunbridge/internal/logging"
	"tunbridge/internal/wire"
)

type testLogger struct {
	lines []string
}

func (l *testLogger) Printf(format string, v ...any) {
	l.lines = append(l.lines, format)
}

var _ logging.Logger = (*testLogger)(nil)

func TestPacketizeOutboundFramesAndDrains(t *testing.T) {
	s := newTestState(t)
	_ = s.trs.Drain(s.trs.Len()) // discard the seeded local param unit for a clean slate

	payload := []byte("abc123")
	n := copy(s.ifr.Writable(), func() []byte {
		buf := make([]byte, wire.PrefixLen+len(payload))
		_ = wire.EncodePrefix(buf, len(payload))
		copy(buf[wire.PrefixLen:], payload)
		return buf
	}())
	if err := s.ifr.Append(n); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := s.packetizeOutbound(); err != nil {
		t.Fatalf("packetizeOutbound: %v", err)
	}
	if s.ifr.Len() != 0 {
		t.Fatalf("ifr.Len() = %d, want 0 (fully drained)", s.ifr.Len())
	}
	if wire.DecodePrefix(s.trs.Bytes()) != len(payload) {
		t.Fatalf("trs prefix = %d, want %d", wire.DecodePrefix(s.trs.Bytes()), len(payload))
	}
}

func TestDepacketizeInboundBackpressure(t *testing.T) {
	s := newTestState(t)

	// Shrink ifw's apparent headroom by filling it almost to capacity.
	fill := s.ifw.Cap() - 4
	if err := s.ifw.Append(fill); err != nil {
		t.Fatalf("Append: %v", err)
	}

	payload := make([]byte, 100)
	unit := make([]byte, wire.PrefixLen+len(payload))
	_ = wire.EncodePrefix(unit, len(payload))
	n := copy(s.trr.Writable(), unit)
	if err := s.trr.Append(n); err != nil {
		t.Fatalf("Append: %v", err)
	}

	before := s.trr.Len()
	logger := &testLogger{}
	if err := s.depacketizeInbound(logger); err != nil {
		t.Fatalf("depacketizeInbound: %v", err)
	}
	if s.trr.Len() != before {
		t.Fatal("depacketizeInbound drained trr despite backpressure on ifw")
	}
}

func TestDepacketizeInboundDropsMalformedCompressedUnit(t *testing.T) {
	s := newTestState(t)
	s.compress = true
	s.cfg.Compress = true

	garbage := []byte{0xff, 0xff, 0xff, 0xff}
	unit := make([]byte, wire.PrefixLen+len(garbage))
	_ = wire.EncodePrefix(unit, len(garbage))
	copy(unit[wire.PrefixLen:], garbage)
	n := copy(s.trr.Writable(), unit)
	if err := s.trr.Append(n); err != nil {
		t.Fatalf("Append: %v", err)
	}

	logger := &testLogger{}
	if err := s.depacketizeInbound(logger); err != nil {
		t.Fatalf("depacketizeInbound: %v", err)
	}
	if s.trr.Len() != 0 {
		t.Fatal("malformed compressed unit was not drained")
	}
	if len(logger.lines) == 0 {
		t.Fatal("expected a log line for the dropped unit")
	}
}

func TestDepacketizeInboundSecondParamUnitIsProtocolError(t *testing.T) {
	s := newTestState(t)
	s.havePeer = true // simulate a parameter unit already received

	p := config.Session{Mode: config.ModeL3}
	paramUnit := make([]byte, wire.PrefixLen+wire.ParamsLen)
	n, err := wire.EncodeParamUnit(paramUnit, p.LocalParams())
	if err != nil {
		t.Fatalf("EncodeParamUnit: %v", err)
	}
	wn := copy(s.trr.Writable(), paramUnit[:n])
	if err := s.trr.Append(wn); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if err := s.depacketizeInbound(&testLogger{}); err != ErrProtocol {
		t.Fatalf("depacketizeInbound() = %v, want ErrProtocol", err)
	}
}
