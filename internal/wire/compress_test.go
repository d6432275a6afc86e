package wire

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompressUncompressRoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)

	cdst := make([]byte, MaxCompressedSize(len(src)))
	n, err := Compress(cdst, src)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	block := cdst[:n]

	usize, err := UncompressedSize(block)
	if err != nil {
		t.Fatalf("UncompressedSize: %v", err)
	}
	if usize != len(src) {
		t.Fatalf("UncompressedSize = %d, want %d", usize, len(src))
	}

	udst := make([]byte, usize)
	un, err := Uncompress(udst, block)
	if err != nil {
		t.Fatalf("Uncompress: %v", err)
	}
	if !bytes.Equal(udst[:un], src) {
		t.Fatal("round-tripped payload does not match original")
	}
}

func TestCompressEmptyPayload(t *testing.T) {
	cdst := make([]byte, MaxCompressedSize(0))
	n, err := Compress(cdst, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	udst := make([]byte, 0)
	usize, err := UncompressedSize(cdst[:n])
	if err != nil {
		t.Fatalf("UncompressedSize: %v", err)
	}
	if usize != 0 {
		t.Fatalf("UncompressedSize = %d, want 0", usize)
	}
	if _, err := Uncompress(udst, cdst[:n]); err != nil {
		t.Fatalf("Uncompress: %v", err)
	}
}

func TestUncompressMalformedBlockIsRecoverable(t *testing.T) {
	garbage := []byte{0xff, 0xff, 0xff, 0xff, 0xff}
	_, err := UncompressedSize(garbage)
	if err == nil {
		t.Fatal("expected error decoding garbage block")
	}
	var recov *RecoverableError
	if !errors.As(err, &recov) {
		t.Fatalf("expected *RecoverableError, got %T: %v", err, err)
	}

	_, err = Uncompress(make([]byte, 16), garbage)
	if err == nil {
		t.Fatal("expected error uncompressing garbage block")
	}
	if !errors.As(err, &recov) {
		t.Fatalf("expected *RecoverableError from Uncompress, got %T: %v", err, err)
	}
}
