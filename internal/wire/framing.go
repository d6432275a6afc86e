// Package wire implements the on-wire unit format: a 2-byte
// big-endian length prefix followed by payload, and the Snappy
// compression wrapper applied to that payload when compression is
// negotiated on.
package wire

import (
	"encoding/binary"
	"fmt"
)

// PrefixLen is the size in bytes of the length prefix of every unit.
const PrefixLen = 2

// MaxUnitLen is the largest value a length prefix can carry.
const MaxUnitLen = 65535

// EncodePrefix writes the 2-byte big-endian length n into dst[0:2].
// dst must have at least PrefixLen bytes available.
func EncodePrefix(dst []byte, n int) error {
	if n < 0 || n > MaxUnitLen {
		return fmt.Errorf("wire: length %d out of range [0,%d]", n, MaxUnitLen)
	}
	binary.BigEndian.PutUint16(dst, uint16(n))
	return nil
}

// DecodePrefix reads the first 2 bytes of src as a big-endian length.
// src must hold at least PrefixLen bytes.
func DecodePrefix(src []byte) int {
	return int(binary.BigEndian.Uint16(src))
}

// Unit is a borrowed view into a buffer: Payload aliases the source
// buffer and Consumed is the number of bytes (prefix + payload) the
// caller must drain once it is done with Payload.
type Unit struct {
	Payload  []byte
	Consumed int
}

// TryTakeUnit inspects buf for one complete length-prefixed unit
// without copying. ok is false when buf does not yet hold a full
// unit ("need more").
func TryTakeUnit(buf []byte) (u Unit, ok bool) {
	if len(buf) < PrefixLen {
		return Unit{}, false
	}
	n := DecodePrefix(buf)
	total := PrefixLen + n
	if len(buf) < total {
		return Unit{}, false
	}
	return Unit{Payload: buf[PrefixLen:total], Consumed: total}, true
}
