//go:build linux

package engine

import (
	"context"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"tunbridge/internal/config"
	"tunbridge/internal/logging"
	"tunbridge/internal/wire"
)

type nullLogger struct{}

func (nullLogger) Printf(string, ...any) {}

// socketpair returns two connected bidirectional fds, mirroring the
// teacher's epoll test helper.
func socketpair(t *testing.T) (a, b int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func testConfig() config.Session {
	return config.Session{
		Mode:         config.ModeL3,
		MaxFrameSize: 1500,
		IfBufferSize: 4096,
		TrBufferSize: 4096,
	}
}

func readParamUnit(t *testing.T, fd int) wire.Params {
	t.Helper()
	buf := make([]byte, wire.PrefixLen+wire.ParamsLen)
	readFull(t, fd, buf)
	if wire.DecodePrefix(buf) != 0 {
		t.Fatal("expected a zero-length parameter unit first")
	}
	p, err := wire.DecodeParams(buf[wire.PrefixLen:])
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	return p
}

func readFull(t *testing.T, fd int, buf []byte) {
	t.Helper()
	got := 0
	for got < len(buf) {
		n, err := unix.Read(fd, buf[got:])
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		got += n
	}
}

// TestEngineForwardsInterfaceToTransport drives one frame from the
// (fake) interface side to the transport side and checks it arrives
// framed and, ahead of it, the local parameter unit.
func TestEngineForwardsInterfaceToTransport(t *testing.T) {
	ifEngine, ifPeer := socketpair(t)
	trEngine, trPeer := socketpair(t)

	cfg := testConfig()
	eng, err := New(cfg, ifEngine, trEngine, trEngine, nullLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	if got := readParamUnit(t, trPeer); got.Mode != config.ModeL3 {
		t.Fatalf("peer params = %+v", got)
	}

	payload := []byte("packet-from-interface")
	if _, err := unix.Write(ifPeer, payload); err != nil {
		t.Fatalf("write to interface peer: %v", err)
	}

	prefixBuf := make([]byte, wire.PrefixLen)
	readFull(t, trPeer, prefixBuf)
	n := wire.DecodePrefix(prefixBuf)
	body := make([]byte, n)
	readFull(t, trPeer, body)
	if string(body) != string(payload) {
		t.Fatalf("forwarded payload = %q, want %q", body, payload)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// TestEngineForwardsTransportToInterface drives one framed unit from
// the transport side to the interface side.
func TestEngineForwardsTransportToInterface(t *testing.T) {
	ifEngine, ifPeer := socketpair(t)
	trEngine, trPeer := socketpair(t)

	cfg := testConfig()
	eng, err := New(cfg, ifEngine, trEngine, trEngine, nullLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	_ = readParamUnit(t, trPeer)

	// Peer's own parameter unit, then one data unit.
	peerParams := wire.Params{Mode: config.ModeL3, Compress: wire.CompressNone, MaxFrameSize: 1500}
	hdr := make([]byte, wire.PrefixLen+wire.ParamsLen)
	n, err := wire.EncodeParamUnit(hdr, peerParams)
	if err != nil {
		t.Fatalf("EncodeParamUnit: %v", err)
	}
	if _, err := unix.Write(trPeer, hdr[:n]); err != nil {
		t.Fatalf("write peer params: %v", err)
	}

	payload := []byte("packet-from-transport")
	unitBuf := make([]byte, wire.PrefixLen+len(payload))
	_ = wire.EncodePrefix(unitBuf, len(payload))
	copy(unitBuf[wire.PrefixLen:], payload)
	if _, err := unix.Write(trPeer, unitBuf); err != nil {
		t.Fatalf("write data unit: %v", err)
	}

	got := make([]byte, len(payload))
	readFull(t, ifPeer, got)
	if string(got) != string(payload) {
		t.Fatalf("delivered payload = %q, want %q", got, payload)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

// TestEngineEndOfStreamTerminatesCleanly checks that closing the peer
// end of the interface socket (a read returning 0) ends the session
// successfully rather than with an error.
func TestEngineEndOfStreamTerminatesCleanly(t *testing.T) {
	ifEngine, ifPeer := socketpair(t)
	trEngine, trPeer := socketpair(t)
	defer func() { _ = unix.Close(trPeer) }()

	cfg := testConfig()
	eng, err := New(cfg, ifEngine, trEngine, trEngine, nullLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_ = unix.Close(ifPeer) // the interface side hangs up

	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil on clean end of stream", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not terminate after interface end-of-stream")
	}
}

// TestEngineProtocolErrorOnSecondParamUnit checks that a duplicate
// parameter unit on the same direction is treated as a protocol
// violation.
func TestEngineProtocolErrorOnSecondParamUnit(t *testing.T) {
	ifEngine, _ := socketpair(t)
	trEngine, trPeer := socketpair(t)

	cfg := testConfig()
	eng, err := New(cfg, ifEngine, trEngine, trEngine, nullLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_ = readParamUnit(t, trPeer)

	zero := make([]byte, wire.PrefixLen+wire.ParamsLen)
	_ = wire.EncodePrefix(zero, 0)
	_ = wire.EncodeParams(zero[wire.PrefixLen:], wire.Params{Mode: config.ModeL3})
	// Write it twice: the second occurrence is the protocol violation.
	if _, err := unix.Write(trPeer, zero); err != nil {
		t.Fatalf("write first param unit: %v", err)
	}
	if _, err := unix.Write(trPeer, zero); err != nil {
		t.Fatalf("write second param unit: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- eng.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != ErrProtocol {
			t.Fatalf("Run() = %v, want ErrProtocol", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not terminate on protocol violation")
	}
}
