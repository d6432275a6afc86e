package engine

import (
	"tunbridge/internal/config"
	"tunbridge/internal/ringbuf"
	"tunbridge/internal/wire"
)

// State is the forwarding state of one active session: the three
// descriptors, the four ring buffers, and the negotiated transport
// parameters. It is owned exclusively by the Engine's Run loop.
type State struct {
	ifFD  int
	trIn  int
	trOut int

	ifr *ringbuf.Buffer // interface-read
	ifw *ringbuf.Buffer // interface-write
	trr *ringbuf.Buffer // transport-receive
	trs *ringbuf.Buffer // transport-send

	cfg      config.Session
	compress bool

	peerParams    wire.Params
	haveLocalSent bool
	havePeer      bool
}

// NewState allocates session state with buffers sized per cfg and
// seeds the transport-send buffer with the local parameter unit, per
// spec.md §4.4 Initialization.
func NewState(cfg config.Session, ifFD, trIn, trOut int) (*State, error) {
	s := &State{
		ifFD:     ifFD,
		trIn:     trIn,
		trOut:    trOut,
		ifr:      ringbuf.New(cfg.InterfaceBufferCapacity()),
		ifw:      ringbuf.New(cfg.InterfaceBufferCapacity()),
		trr:      ringbuf.New(cfg.TransportBufferCapacity()),
		trs:      ringbuf.New(cfg.TransportBufferCapacity()),
		cfg:      cfg,
		compress: cfg.Compress,
	}
	if err := s.seedParamUnit(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) seedParamUnit() error {
	dst := s.trs.Writable()
	n, err := wire.EncodeParamUnit(dst, s.cfg.LocalParams())
	if err != nil {
		return err
	}
	if err := s.trs.Append(n); err != nil {
		return err
	}
	s.haveLocalSent = true
	return nil
}

// PeerParams returns the parameters received from the peer and
// whether they have been received yet.
func (s *State) PeerParams() (wire.Params, bool) {
	return s.peerParams, s.havePeer
}

// LocalParamsSent reports whether the local parameter unit has been
// seeded into the transport-send buffer (always true once NewState
// returns successfully; exposed for tests asserting Initialization).
func (s *State) LocalParamsSent() bool {
	return s.haveLocalSent
}
