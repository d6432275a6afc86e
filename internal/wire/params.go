package wire

import (
	"encoding/binary"
	"fmt"
)

// InterfaceMode is the ifmode byte of a parameter unit.
type InterfaceMode uint8

const (
	ModeL3 InterfaceMode = 1
	ModeL2 InterfaceMode = 2
)

func (m InterfaceMode) String() string {
	switch m {
	case ModeL3:
		return "l3"
	case ModeL2:
		return "l2"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// CompressFlag is the compflag byte of a parameter unit.
type CompressFlag uint8

const (
	CompressUnspecified CompressFlag = 0
	CompressNone        CompressFlag = 1
	CompressOn          CompressFlag = 2
)

// ParamsLen is the size of the 4 trailing bytes of a parameter unit.
const ParamsLen = 4

// Params carries the transport parameters exchanged in the
// zero-length unit at the start of each direction.
type Params struct {
	Mode         InterfaceMode
	Compress     CompressFlag
	MaxFrameSize uint16
}

// EncodeParams writes the 4-byte parameter trailer into dst.
func EncodeParams(dst []byte, p Params) error {
	if len(dst) < ParamsLen {
		return fmt.Errorf("wire: params buffer too small: %d < %d", len(dst), ParamsLen)
	}
	dst[0] = byte(p.Mode)
	dst[1] = byte(p.Compress)
	binary.BigEndian.PutUint16(dst[2:4], p.MaxFrameSize)
	return nil
}

// DecodeParams reads the 4-byte parameter trailer from src.
func DecodeParams(src []byte) (Params, error) {
	if len(src) < ParamsLen {
		return Params{}, fmt.Errorf("wire: params payload too short: %d < %d", len(src), ParamsLen)
	}
	return Params{
		Mode:         InterfaceMode(src[0]),
		Compress:     CompressFlag(src[1]),
		MaxFrameSize: binary.BigEndian.Uint16(src[2:4]),
	}, nil
}

// EncodeParamUnit writes a full zero-length parameter unit (2-byte
// zero length followed by the 4 parameter bytes) into dst, which must
// be at least PrefixLen+ParamsLen bytes, and returns the number of
// bytes written.
func EncodeParamUnit(dst []byte, p Params) (int, error) {
	if len(dst) < PrefixLen+ParamsLen {
		return 0, fmt.Errorf("wire: param unit buffer too small: %d < %d", len(dst), PrefixLen+ParamsLen)
	}
	if err := EncodePrefix(dst, 0); err != nil {
		return 0, err
	}
	if err := EncodeParams(dst[PrefixLen:], p); err != nil {
		return 0, err
	}
	return PrefixLen + ParamsLen, nil
}
