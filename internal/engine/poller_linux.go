//go:build linux

package engine

import (
	"errors"

	"golang.org/x/sys/unix"
)

// poller multiplexes readiness across the session's descriptors using
// a fresh epoll instance per Phase C invocation. The registered set
// changes every iteration (buffer occupancy drives which fds are
// interesting), so rebuilding it is simpler to reason about than
// incrementally patching one long-lived epoll instance, and the
// per-iteration epoll_create/close cost is negligible next to the
// read/write syscalls that follow.
type poller struct {
	cancelFD int // read end of the self-pipe used for ctx cancellation, or -1
}

// wait blocks until one of the wanted conditions is ready, the
// cancellation pipe becomes readable, or an error occurs. ready
// reflects the actual fired subset of w; cancelled is true if the
// wakeup was the cancellation pipe.
func (p *poller) wait(ifFD, trIn, trOut int, w want) (ready want, cancelled bool, err error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return want{}, false, err
	}
	defer func() { _ = unix.Close(epfd) }()

	masks := make(map[int]uint32)
	addMask := func(fd int, bit uint32) {
		if fd < 0 {
			return
		}
		masks[fd] |= bit
	}
	if w.trInRead {
		addMask(trIn, unix.EPOLLIN)
	}
	if w.trOutWrite {
		addMask(trOut, unix.EPOLLOUT)
	}
	if w.ifRead {
		addMask(ifFD, unix.EPOLLIN)
	}
	if w.ifWrite {
		addMask(ifFD, unix.EPOLLOUT)
	}
	if p.cancelFD >= 0 {
		addMask(p.cancelFD, unix.EPOLLIN)
	}

	for fd, mask := range masks {
		ev := unix.EpollEvent{Events: mask | unix.EPOLLERR | unix.EPOLLHUP, Fd: int32(fd)}
		if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
			return want{}, false, err
		}
	}

	var evs [8]unix.EpollEvent
	for {
		n, err := unix.EpollWait(epfd, evs[:], -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return want{}, false, err
		}
		for i := 0; i < n; i++ {
			fd := int(evs[i].Fd)
			flags := evs[i].Events
			if p.cancelFD >= 0 && fd == p.cancelFD {
				cancelled = true
				continue
			}
			if fd == trIn && w.trInRead && flags&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				ready.trInRead = true
			}
			if fd == trOut && w.trOutWrite && flags&(unix.EPOLLOUT|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				ready.trOutWrite = true
			}
			if fd == ifFD && w.ifRead && flags&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				ready.ifRead = true
			}
			if fd == ifFD && w.ifWrite && flags&(unix.EPOLLOUT|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				ready.ifWrite = true
			}
		}
		if cancelled || ready.any() {
			return ready, cancelled, nil
		}
	}
}
