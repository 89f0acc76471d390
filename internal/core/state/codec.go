package state

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/LeJamon/goPriceOracle/internal/core/fixed"
	"github.com/pierrec/lz4"
	"github.com/ugorji/go/codec"
)

// History slot framing.
const (
	frameRaw byte = 0x00
	frameLZ4 byte = 0x01

	// compressThreshold is the encoded size above which the history slot is
	// lz4-compressed.
	compressThreshold = 1024
)

var (
	// ErrCorrupt is returned when a persisted slot cannot be decoded.
	ErrCorrupt = errors.New("state: corrupt slot")

	msgpack = &codec.MsgpackHandle{}
)

func encodePrice(v fixed.U16F16) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v.Bits())
	return b[:]
}

func decodePrice(b []byte) (fixed.U16F16, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("%w: price slot is %d bytes", ErrCorrupt, len(b))
	}
	return fixed.FromBits(binary.BigEndian.Uint32(b)), nil
}

func encodeHeight(h uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h)
	return b[:]
}

func decodeHeight(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: height slot is %d bytes", ErrCorrupt, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

// encodeHistory writes the history as a msgpack array of raw bits behind a
// one-byte frame header.
func encodeHistory(values []fixed.U16F16) ([]byte, error) {
	bits := make([]uint32, len(values))
	for i, v := range values {
		bits[i] = v.Bits()
	}

	var raw []byte
	if err := codec.NewEncoderBytes(&raw, msgpack).Encode(bits); err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	if len(raw) <= compressThreshold {
		return append([]byte{frameRaw}, raw...), nil
	}

	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(raw)))

	compressed := make([]byte, lz4.CompressBlockBound(len(raw)))
	size, err := lz4.CompressBlock(raw, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compress history: %w", err)
	}
	if size == 0 || size >= len(raw) {
		// Incompressible.
		return append([]byte{frameRaw}, raw...), nil
	}

	out := make([]byte, 0, 1+n+size)
	out = append(out, frameLZ4)
	out = append(out, hdr[:n]...)
	return append(out, compressed[:size]...), nil
}

func decodeHistory(b []byte) ([]fixed.U16F16, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty history slot", ErrCorrupt)
	}

	var raw []byte
	switch b[0] {
	case frameRaw:
		raw = b[1:]
	case frameLZ4:
		size, n := binary.Uvarint(b[1:])
		if n <= 0 || size == 0 || size > 1<<30 {
			return nil, fmt.Errorf("%w: bad history length header", ErrCorrupt)
		}
		raw = make([]byte, size)
		got, err := lz4.UncompressBlock(b[1+n:], raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if uint64(got) != size {
			return nil, fmt.Errorf("%w: history length %d, want %d", ErrCorrupt, got, size)
		}
	default:
		return nil, fmt.Errorf("%w: unknown history frame 0x%02x", ErrCorrupt, b[0])
	}

	var bits []uint32
	if err := codec.NewDecoderBytes(raw, msgpack).Decode(&bits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	values := make([]fixed.U16F16, len(bits))
	for i, v := range bits {
		values[i] = fixed.FromBits(v)
	}
	return values, nil
}
