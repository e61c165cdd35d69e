// Package codec implements the append-only writer and cursor-based reader used
// to build query requests and parse query replies.
//
// All multi-byte integers are little-endian and stored without padding or
// alignment. The codec knows nothing about the query protocol itself.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrTruncatedBuffer is returned when a read needs more bytes than remain.
	ErrTruncatedBuffer = errors.New("codec: truncated buffer")

	// ErrInvalidSlice is returned when a slice offset lies outside the storage.
	ErrInvalidSlice = errors.New("codec: invalid slice offset")

	// ErrReadOnly is returned when writing to a buffer built from received bytes.
	ErrReadOnly = errors.New("codec: buffer is read-only")
)

// TextDecoder turns a raw length-prefixed byte range into display text.
// A nil TextDecoder passes the bytes through unchanged.
type TextDecoder func(raw []byte) (string, error)

// Buffer is a byte buffer with independent write and read offsets.
type Buffer struct {
	data     []byte
	readOff  int
	readOnly bool
}

// New returns an empty writable buffer.
func New() *Buffer {
	return &Buffer{}
}

// FromBytes returns a read-only buffer over b. The caller must not modify b afterwards.
func FromBytes(b []byte) *Buffer {
	return &Buffer{data: b, readOnly: true}
}

// Bytes returns the accumulated bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the total number of bytes held by the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Offset returns the current read offset.
func (b *Buffer) Offset() int {
	return b.readOff
}

// Remaining returns the number of bytes left to read.
func (b *Buffer) Remaining() int {
	return len(b.data) - b.readOff
}

// Slice returns a new read-only buffer over the storage from offset k onward,
// with its own read offset at 0.
func (b *Buffer) Slice(k int) (*Buffer, error) {
	if k < 0 || k > len(b.data) {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidSlice, k, len(b.data))
	}

	return &Buffer{data: b.data[k:len(b.data):len(b.data)], readOnly: true}, nil
}

// WriteUint8 appends a single byte.
func (b *Buffer) WriteUint8(v uint8) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.data = append(b.data, v)

	return nil
}

// WriteBool appends 1 for true and 0 for false.
func (b *Buffer) WriteBool(v bool) error {
	if v {
		return b.WriteUint8(1)
	}

	return b.WriteUint8(0)
}

// WriteUint16 appends v in little-endian order.
func (b *Buffer) WriteUint16(v uint16) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.data = binary.LittleEndian.AppendUint16(b.data, v)

	return nil
}

// WriteUint32 appends v in little-endian order.
func (b *Buffer) WriteUint32(v uint32) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.data = binary.LittleEndian.AppendUint32(b.data, v)

	return nil
}

// WriteBytes appends p as-is.
func (b *Buffer) WriteBytes(p []byte) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.data = append(b.data, p...)

	return nil
}

// WriteString appends the raw bytes of s with no length prefix and no terminator.
func (b *Buffer) WriteString(s string) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.data = append(b.data, s...)

	return nil
}

// next consumes n bytes or fails without moving the read offset.
func (b *Buffer) next(n int) ([]byte, error) {
	if n < 0 || n > b.Remaining() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrTruncatedBuffer, n, b.readOff, b.Remaining())
	}

	p := b.data[b.readOff : b.readOff+n : b.readOff+n]
	b.readOff += n

	return p, nil
}

// ReadUint8 consumes one byte.
func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}

	return p[0], nil
}

// ReadBool consumes one byte and reports whether it is nonzero.
func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

// ReadUint16 consumes two bytes as a little-endian integer.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint16(p), nil
}

// ReadUint32 consumes four bytes as a little-endian integer.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(p), nil
}

// ReadBytes consumes exactly n bytes. The returned slice shares the storage
// and must not be modified.
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	return b.next(n)
}

// ReadText consumes n bytes and hands them to decode.
func (b *Buffer) ReadText(n int, decode TextDecoder) (string, error) {
	p, err := b.next(n)
	if err != nil {
		return "", err
	}

	if decode == nil {
		return string(p), nil
	}

	return decode(p)
}
