package engine

import "tunbridge/internal/wire"

// want describes which of the four readiness conditions Phase C
// currently cares about, per spec.md §4.4 Phase C.
type want struct {
	trInRead   bool // tr_in_fd readable: trr has room for more bytes
	trOutWrite bool // tr_out_fd writable: trs has pending bytes
	ifRead     bool // if_fd readable: ifr has room for a max-sized frame
	ifWrite    bool // if_fd writable: ifw holds a complete frame
}

func (w want) any() bool {
	return w.trInRead || w.trOutWrite || w.ifRead || w.ifWrite
}

// wants computes the current Phase C readiness set from buffer
// occupancy.
func (s *State) wants() want {
	return want{
		trInRead:   s.trr.Free() > 0,
		trOutWrite: s.trs.Len() > 0,
		ifRead:     s.ifr.Free() >= wire.PrefixLen+s.cfg.MaxFrameSize,
		ifWrite:    s.hasCompleteFrame(),
	}
}
