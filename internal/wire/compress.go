package wire

import (
	"fmt"

	"github.com/golang/snappy"
)

// RecoverableError marks a decompression failure that the forwarding
// engine should treat as "drop this unit and continue" rather than as
// a fatal or protocol error (spec: malformed compressed unit).
type RecoverableError struct {
	cause error
}

func (e *RecoverableError) Error() string { return "wire: malformed compressed unit: " + e.cause.Error() }

func (e *RecoverableError) Unwrap() error { return e.cause }

// MaxCompressedSize returns a conservative upper bound on the size of
// the compressed form of an uncompressedSize-byte payload.
func MaxCompressedSize(uncompressedSize int) int {
	return snappy.MaxEncodedLen(uncompressedSize)
}

// Compress fills dst with the Snappy-compressed form of src and
// returns the number of bytes written. dst must be at least
// MaxCompressedSize(len(src)) bytes.
func Compress(dst, src []byte) (int, error) {
	out := snappy.Encode(dst, src)
	if len(out) == 0 && len(src) != 0 {
		return 0, fmt.Errorf("wire: snappy encode produced empty output for %d-byte input", len(src))
	}
	return len(out), nil
}

// UncompressedSize returns the size a Snappy block expands to.
func UncompressedSize(block []byte) (int, error) {
	n, err := snappy.DecodedLen(block)
	if err != nil {
		return 0, &RecoverableError{cause: err}
	}
	return n, nil
}

// Uncompress restores the original bytes of a Snappy block into dst,
// which must be at least UncompressedSize(block) bytes, and returns
// the number of bytes written.
func Uncompress(dst, block []byte) (int, error) {
	out, err := snappy.Decode(dst, block)
	if err != nil {
		return 0, &RecoverableError{cause: err}
	}
	return len(out), nil
}
