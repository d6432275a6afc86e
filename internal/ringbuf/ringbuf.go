// Package ringbuf implements the fixed-capacity byte buffers the
// forwarding engine uses for its four stages (interface-read,
// interface-write, transport-receive, transport-send). Each buffer is
// owned exclusively by the engine that allocated it; there is no
// concurrency inside a buffer.
package ringbuf

import "fmt"

// MinCapacity and MaxCapacity bound configurable buffer overrides.
const (
	MinCapacity = 128
	MaxCapacity = 16 * 1024 * 1024
)

// Buffer is a contiguous byte slice holding a valid region [0, len)
// at its front. Writable space sits past len; Drain moves the
// remaining bytes back to the front every time, so producers always
// see one contiguous run.
type Buffer struct {
	data []byte
	len  int
}

// New allocates a Buffer with the given capacity, clamped to
// [MinCapacity, MaxCapacity].
func New(capacity int) *Buffer {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	if capacity > MaxCapacity {
		capacity = MaxCapacity
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Len returns the number of valid bytes currently held.
func (b *Buffer) Len() int { return b.len }

// Cap returns the total capacity of the buffer.
func (b *Buffer) Cap() int { return len(b.data) }

// Free returns the number of bytes of headroom a producer can still
// append; it always equals the length of the slice Writable returns.
func (b *Buffer) Free() int { return len(b.data) - b.len }

// Bytes returns the valid region [0, len).
func (b *Buffer) Bytes() []byte { return b.data[:b.len] }

// Writable returns the free slot a producer should read or write
// into next. It does not move any data: the valid region is already
// at the front, since Drain compacts eagerly.
func (b *Buffer) Writable() []byte {
	return b.data[b.len:]
}

// WritableAt returns the free slot starting offset bytes past the
// current valid region's tail, reserving [len, len+offset) for the
// caller to fill in afterward (used to reserve a length-prefix slot
// ahead of a write that is not yet known to fit).
func (b *Buffer) WritableAt(offset int) []byte {
	start := b.len + offset
	if start > len(b.data) {
		return nil
	}
	return b.data[start:]
}

// Append advances len by n bytes, which must already have been
// written into the slice returned by Writable or WritableAt(0).
func (b *Buffer) Append(n int) error {
	if n < 0 || b.len+n > len(b.data) {
		return fmt.Errorf("ringbuf: append %d overflows buffer (len=%d cap=%d)", n, b.len, len(b.data))
	}
	b.len += n
	return nil
}

// Drain removes n bytes from the front of the valid region, shifting
// the remaining tail down via copy (memmove semantics).
func (b *Buffer) Drain(n int) error {
	if n < 0 || n > b.len {
		return fmt.Errorf("ringbuf: drain %d exceeds valid length %d", n, b.len)
	}
	remaining := b.len - n
	copy(b.data[:remaining], b.data[n:b.len])
	b.len = remaining
	return nil
}

// Reset empties the buffer without releasing its backing array.
func (b *Buffer) Reset() { b.len = 0 }
