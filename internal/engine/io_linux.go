//go:build linux

package engine

import (
	"golang.org/x/sys/unix"
)

// setNonblocking marks each distinct fd in fds as non-blocking, per
// spec.md §4.4 Initialization.
func setNonblocking(fds ...int) error {
	seen := make(map[int]bool)
	for _, fd := range fds {
		if fd < 0 || seen[fd] {
			continue
		}
		seen[fd] = true
		if err := unix.SetNonblock(fd, true); err != nil {
			return err
		}
	}
	return nil
}

// rawRead performs one non-blocking read(2), reporting a 0-byte
// return as ErrEndOfStream. Other errors, transient ones included,
// are returned unchanged; callers classify them with isTransient.
func rawRead(fd int, p []byte) (int, error) {
	n, err := unix.Read(fd, p)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrEndOfStream
	}
	return n, nil
}

// rawWrite performs one non-blocking write(2). Short writes are
// returned as-is; the caller decides how to account for them.
func rawWrite(fd int, p []byte) (int, error) {
	return unix.Write(fd, p)
}
