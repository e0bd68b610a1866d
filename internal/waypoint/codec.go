package waypoint

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// Record layout, big-endian, repeated until end of input:
//
//	[world_len:2][world:world_len][x:8][y:8][z:8][yaw:4][pitch:4]
//
// There is no header, count, separator or checksum.
const (
	lenPrefixSize = 2
	poseSize      = 3*8 + 2*4
)

var (
	// ErrTruncated is returned when input ends inside a record or a world
	// length prefix runs past the end of input.
	ErrTruncated = errors.New("truncated record")
	// ErrInvalidWorld is returned when a world name is not valid UTF-8.
	ErrInvalidWorld = errors.New("world name is not valid UTF-8")
)

// DecodeError reports where in the input decoding stopped.
type DecodeError struct {
	Record int // zero-based index of the record being decoded
	Offset int // byte offset of the failure
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("waypoint: record %d at offset %d: %v", e.Record, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serializes t. The output for a given trajectory is always the same.
func Encode(t Trajectory) ([]byte, error) {
	size := 0
	for _, w := range t {
		size += lenPrefixSize + len(w.World) + poseSize
	}
	out := make([]byte, 0, size)
	for i, w := range t {
		var err error
		out, err = appendWaypoint(out, w)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
	}
	return out, nil
}

// EncodeTo writes the encoding of t to w.
func EncodeTo(w io.Writer, t Trajectory) error {
	data, err := Encode(t)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write trajectory: %w", err)
	}
	return nil
}

func appendWaypoint(b []byte, w Waypoint) ([]byte, error) {
	if len(w.World) > MaxWorldLen {
		return nil, fmt.Errorf("world name is %d bytes, limit is %d", len(w.World), MaxWorldLen)
	}
	b = binary.BigEndian.AppendUint16(b, uint16(len(w.World)))
	b = append(b, w.World...)
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(w.X))
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(w.Y))
	b = binary.BigEndian.AppendUint64(b, math.Float64bits(w.Z))
	b = binary.BigEndian.AppendUint32(b, math.Float32bits(w.Yaw))
	b = binary.BigEndian.AppendUint32(b, math.Float32bits(w.Pitch))
	return b, nil
}

// Decode parses records until data is exhausted. Empty input yields an
// empty trajectory and no error; any partial record is a *DecodeError.
func Decode(data []byte) (Trajectory, error) {
	t := Trajectory{}
	off := 0
	for off < len(data) {
		start := off
		if len(data)-off < lenPrefixSize {
			return nil, &DecodeError{Record: len(t), Offset: start, Err: ErrTruncated}
		}
		n := int(binary.BigEndian.Uint16(data[off:]))
		off += lenPrefixSize
		if len(data)-off < n {
			return nil, &DecodeError{Record: len(t), Offset: start, Err: ErrTruncated}
		}
		world := data[off : off+n]
		if !utf8.Valid(world) {
			return nil, &DecodeError{Record: len(t), Offset: off, Err: ErrInvalidWorld}
		}
		off += n
		if len(data)-off < poseSize {
			return nil, &DecodeError{Record: len(t), Offset: start, Err: ErrTruncated}
		}
		p := data[off : off+poseSize]
		t = append(t, Waypoint{
			World: string(world),
			X:     math.Float64frombits(binary.BigEndian.Uint64(p[0:8])),
			Y:     math.Float64frombits(binary.BigEndian.Uint64(p[8:16])),
			Z:     math.Float64frombits(binary.BigEndian.Uint64(p[16:24])),
			Yaw:   math.Float32frombits(binary.BigEndian.Uint32(p[24:28])),
			Pitch: math.Float32frombits(binary.BigEndian.Uint32(p[28:32])),
		})
		off += poseSize
	}
	return t, nil
}

// DecodeFrom reads r to EOF and decodes the result.
func DecodeFrom(r io.Reader) (Trajectory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trajectory: %w", err)
	}
	return Decode(data)
}
