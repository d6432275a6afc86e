package engine

import (
	"tunbridge/internal/logging"
	"tunbridge/internal/wire"
)

// packetizeOutbound is Phase A: while ifr holds a complete frame and
// trs has room for the (optionally compressed) result plus its
// prefix, move it across.
func (s *State) packetizeOutbound() error {
	for {
		unit, ok := wire.TryTakeUnit(s.ifr.Bytes())
		if !ok {
			return nil
		}
		payload := unit.Payload

		var need int
		if s.compress {
			need = wire.PrefixLen + wire.MaxCompressedSize(len(payload))
		} else {
			need = wire.PrefixLen + len(payload)
		}
		if s.trs.Free() < need {
			return nil
		}

		dst := s.trs.WritableAt(wire.PrefixLen)
		var n int
		if s.compress {
			var err error
			n, err = wire.Compress(dst, payload)
			if err != nil {
				return err
			}
		} else {
			n = copy(dst, payload)
		}
		if err := wire.EncodePrefix(s.trs.Writable(), n); err != nil {
			return err
		}
		if err := s.trs.Append(wire.PrefixLen + n); err != nil {
			return err
		}
		if err := s.ifr.Drain(unit.Consumed); err != nil {
			return err
		}
	}
}

// depacketizeInbound is Phase B: while trr holds a complete unit,
// consume the parameter unit (once) or decode a data unit into ifw,
// subject to backpressure against ifw's free space.
func (s *State) depacketizeInbound(logger logging.Logger) error {
	for {
		buf := s.trr.Bytes()
		if len(buf) < wire.PrefixLen {
			return nil
		}
		n := wire.DecodePrefix(buf)

		if n == 0 {
			total := wire.PrefixLen + wire.ParamsLen
			if len(buf) < total {
				return nil // need more
			}
			if s.havePeer {
				return ErrProtocol
			}
			params, err := wire.DecodeParams(buf[wire.PrefixLen:total])
			if err != nil {
				return err
			}
			s.peerParams = params
			s.havePeer = true
			if err := s.trr.Drain(total); err != nil {
				return err
			}
			continue
		}

		total := wire.PrefixLen + n
		if len(buf) < total {
			return nil // need more
		}
		payload := buf[wire.PrefixLen:total]

		if s.compress {
			usize, err := wire.UncompressedSize(payload)
			if err != nil {
				logger.Printf("engine: dropping malformed compressed unit: %v", err)
				if derr := s.trr.Drain(total); derr != nil {
					return derr
				}
				continue
			}
			need := wire.PrefixLen + usize
			if s.ifw.Free() < need {
				return nil // backpressure: stop, do not drain
			}
			dst := s.ifw.WritableAt(wire.PrefixLen)
			wn, err := wire.Uncompress(dst, payload)
			if err != nil {
				logger.Printf("engine: dropping malformed compressed unit: %v", err)
				if derr := s.trr.Drain(total); derr != nil {
					return derr
				}
				continue
			}
			if err := wire.EncodePrefix(s.ifw.Writable(), wn); err != nil {
				return err
			}
			if err := s.ifw.Append(wire.PrefixLen + wn); err != nil {
				return err
			}
		} else {
			need := total
			if s.ifw.Free() < need {
				return nil // backpressure
			}
			copy(s.ifw.Writable(), buf[:total])
			if err := s.ifw.Append(total); err != nil {
				return err
			}
		}

		if err := s.trr.Drain(total); err != nil {
			return err
		}
	}
}

// hasCompleteFrame reports whether ifw currently holds at least one
// complete length-prefixed frame ready for injection.
func (s *State) hasCompleteFrame() bool {
	_, ok := wire.TryTakeUnit(s.ifw.Bytes())
	return ok
}
