package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_WriteThenRead(t *testing.T) {
	w := New()
	require.NoError(t, w.WriteString("SAMP"))
	require.NoError(t, w.WriteUint8(0x7f))
	require.NoError(t, w.WriteBool(true))
	require.NoError(t, w.WriteUint16(0x1e61))
	require.NoError(t, w.WriteUint32(0xdeadbeef))
	require.NoError(t, w.WriteBytes([]byte{1, 2, 3}))

	require.Equal(t, 4+1+1+2+4+3, w.Len())
	assert.Equal(t, []byte{0x61, 0x1e}, w.Bytes()[6:8], "uint16 must be little-endian")

	r := FromBytes(w.Bytes())

	magic, err := r.ReadBytes(4)
	require.NoError(t, err)
	assert.Equal(t, "SAMP", string(magic))

	u8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7f), u8)

	flag, err := r.ReadBool()
	require.NoError(t, err)
	assert.True(t, flag)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1e61), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), u32)

	tail, err := r.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, tail)
	assert.Zero(t, r.Remaining())
}

func TestBuffer_TruncatedReads(t *testing.T) {
	reads := map[string]func(b *Buffer) error{
		"uint8":  func(b *Buffer) error { _, err := b.ReadUint8(); return err },
		"bool":   func(b *Buffer) error { _, err := b.ReadBool(); return err },
		"uint16": func(b *Buffer) error { _, err := b.ReadUint16(); return err },
		"uint32": func(b *Buffer) error { _, err := b.ReadUint32(); return err },
		"bytes":  func(b *Buffer) error { _, err := b.ReadBytes(5); return err },
		"text":   func(b *Buffer) error { _, err := b.ReadText(5, nil); return err },
	}
	need := map[string]int{"uint8": 1, "bool": 1, "uint16": 2, "uint32": 4, "bytes": 5, "text": 5}

	for name, read := range reads {
		for size := 0; size < need[name]; size++ {
			b := FromBytes(bytes.Repeat([]byte{0xff}, size))
			err := read(b)
			require.ErrorIs(t, err, ErrTruncatedBuffer, "%s with %d bytes", name, size)
			assert.Zero(t, b.Offset(), "%s: failed read must not move the cursor", name)
		}
	}
}

func TestBuffer_ReadBytesNegative(t *testing.T) {
	_, err := FromBytes([]byte{1, 2}).ReadBytes(-1)
	require.ErrorIs(t, err, ErrTruncatedBuffer)
}

func TestBuffer_Slice(t *testing.T) {
	b := FromBytes([]byte{0, 1, 2, 3, 4})
	_, err := b.ReadUint16()
	require.NoError(t, err)

	s, err := b.Slice(3)
	require.NoError(t, err)
	assert.Zero(t, s.Offset())
	assert.Equal(t, 2, s.Len())

	v, err := s.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), v)
	assert.Equal(t, 2, b.Offset(), "parent cursor is independent")

	end, err := b.Slice(5)
	require.NoError(t, err)
	assert.Zero(t, end.Remaining())

	_, err = b.Slice(6)
	require.ErrorIs(t, err, ErrInvalidSlice)
	_, err = b.Slice(-1)
	require.ErrorIs(t, err, ErrInvalidSlice)
}

func TestBuffer_ReadOnly(t *testing.T) {
	b := FromBytes([]byte{1})
	require.ErrorIs(t, b.WriteUint8(2), ErrReadOnly)
	require.ErrorIs(t, b.WriteString("x"), ErrReadOnly)
	assert.Equal(t, 1, b.Len())

	s, err := b.Slice(0)
	require.NoError(t, err)
	require.ErrorIs(t, s.WriteUint32(1), ErrReadOnly)
}

func TestBuffer_ReadText(t *testing.T) {
	upper := func(raw []byte) (string, error) { return string(bytes.ToUpper(raw)), nil }

	b := FromBytes([]byte("abcdef"))
	s, err := b.ReadText(3, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	s, err = b.ReadText(3, upper)
	require.NoError(t, err)
	assert.Equal(t, "DEF", s)

	failing := func([]byte) (string, error) { return "", errors.New("boom") }
	_, err = FromBytes([]byte("x")).ReadText(1, failing)
	require.EqualError(t, err, "boom")
}
