package protowire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// WireType identifies the payload encoding of a protobuf field.
// Groups (3 and 4) are obsolete and not supported.
type WireType int

const (
	TypeVarint          WireType = 0
	TypeFixed64         WireType = 1
	TypeLengthDelimited WireType = 2
	TypeStartGroup      WireType = 3
	TypeEndGroup        WireType = 4
	TypeFixed32         WireType = 5
)

var (
	// ErrBufferOverflow is returned when a read would run past the end of the buffer.
	ErrBufferOverflow = errors.New("buffer overflow")
	// ErrInvalidMessage is returned when a length-delimited field declares more
	// bytes than the buffer has left.
	ErrInvalidMessage = errors.New("invalid message")
)

type UnsupportedTypeError struct {
	Type WireType
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported wire type %d", int(e.Type))
}

// Field is one decoded key/value pair. Exactly one payload member is
// meaningful, selected by Type: Varint for TypeVarint, Fixed[:4] for
// TypeFixed32, Fixed[:8] for TypeFixed64, Bytes for TypeLengthDelimited.
// Bytes aliases the decoder's buffer (no copy); it stays valid as long as
// the buffer does.
type Field struct {
	Number int
	Type   WireType
	Varint uint64
	Fixed  [8]byte
	Bytes  []byte
}

// Float32 reinterprets a fixed32 payload as an IEEE-754 single.
func (f Field) Float32() float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(f.Fixed[:4]))
}

// Int64 reinterprets a varint payload as a signed two's complement value.
// This is plain reinterpretation, not zigzag decoding.
func (f Field) Int64() int64 {
	return int64(f.Varint)
}

// Decoder is a cursor over an immutable byte buffer. It never advances past
// the end of the buffer; any read that would is an error.
type Decoder struct {
	buf []byte
	pos int
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Sub returns a decoder over a length-delimited field's payload.
func Sub(f Field) (*Decoder, error) {
	if f.Type != TypeLengthDelimited {
		return nil, fmt.Errorf("field %d: not a length-delimited field", f.Number)
	}
	return NewDecoder(f.Bytes), nil
}

// Remaining reports how many undecoded bytes are left.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

func (d *Decoder) readByte() (byte, error) {
	if d.pos >= len(d.buf) {
		return 0, ErrBufferOverflow
	}
	b := d.buf[d.pos]
	d.pos++
	return b, nil
}

// ReadVarint decodes one base-128 varint, least significant group first.
// The loop is hard-capped at 10 bytes; a stream that never clears the
// continuation bit within the cap yields the bits read so far instead of
// an error. That leniency matches the upstream dump format.
func (d *Decoder) ReadVarint() (uint64, error) {
	var v uint64
	for i := 0; i < 10; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			break
		}
	}
	return v, nil
}

// ReadBytes returns the next n bytes as a subslice of the underlying buffer.
func (d *Decoder) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > d.Remaining() {
		return nil, ErrBufferOverflow
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// ReadField decodes one key varint (field number + wire type) and the
// payload the wire type implies.
func (d *Decoder) ReadField() (Field, error) {
	key, err := d.ReadVarint()
	if err != nil {
		return Field{}, err
	}
	f := Field{
		Number: int(key >> 3),
		Type:   WireType(key & 7),
	}
	switch f.Type {
	case TypeVarint:
		f.Varint, err = d.ReadVarint()
		if err != nil {
			return Field{}, err
		}
	case TypeFixed32:
		b, err := d.ReadBytes(4)
		if err != nil {
			return Field{}, err
		}
		copy(f.Fixed[:4], b)
	case TypeFixed64:
		b, err := d.ReadBytes(8)
		if err != nil {
			return Field{}, err
		}
		copy(f.Fixed[:], b)
	case TypeLengthDelimited:
		length, err := d.ReadVarint()
		if err != nil {
			return Field{}, err
		}
		if length > uint64(d.Remaining()) {
			return Field{}, ErrInvalidMessage
		}
		f.Bytes, _ = d.ReadBytes(int(length))
	default:
		return Field{}, UnsupportedTypeError{Type: f.Type}
	}
	return f, nil
}
