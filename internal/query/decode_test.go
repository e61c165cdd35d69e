package query

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/sampq/internal/codec"
)

func header() []byte {
	return []byte{'S', 'A', 'M', 'P', 127, 0, 0, 1, 0x61, 0x1e, 'i'}
}

func infoPayload() []byte {
	w := codec.New()
	_ = w.WriteBool(false)
	_ = w.WriteUint16(12)
	_ = w.WriteUint16(32)
	for _, s := range []string{"Test", "DM", "EN"} {
		_ = w.WriteUint32(uint32(len(s)))
		_ = w.WriteString(s)
	}

	return w.Bytes()
}

func TestParseReply_Info(t *testing.T) {
	res, err := parseReply(OpInfo, append(header(), infoPayload()...), nil)
	require.NoError(t, err)

	assert.Equal(t, &Info{
		Closed:       false,
		Players:      12,
		MaxPlayers:   32,
		ServerName:   "Test",
		GameModeName: "DM",
		Language:     "EN",
	}, res)
}

func TestParseReply_Rules(t *testing.T) {
	w := codec.New()
	_ = w.WriteUint16(2)
	for _, s := range []string{"mapname", "Los Santos", "weather", "10"} {
		_ = w.WriteUint8(uint8(len(s)))
		_ = w.WriteString(s)
	}

	res, err := parseReply(OpRules, append(header(), w.Bytes()...), nil)
	require.NoError(t, err)

	rules := res.(Rules)
	assert.Equal(t, Rules{{Name: "mapname", Value: "Los Santos"}, {Name: "weather", Value: "10"}}, rules)

	v, ok := rules.Get("weather")
	assert.True(t, ok)
	assert.Equal(t, "10", v)
	_, ok = rules.Get("worldtime")
	assert.False(t, ok)
}

func TestParseReply_DetailedPlayers(t *testing.T) {
	w := codec.New()
	_ = w.WriteUint16(1)
	_ = w.WriteUint8(3)
	_ = w.WriteUint8(4)
	_ = w.WriteString("Carl")
	_ = w.WriteUint32(1500)
	_ = w.WriteUint32(48)

	res, err := parseReply(OpDetailedPlayers, append(header(), w.Bytes()...), nil)
	require.NoError(t, err)
	assert.Equal(t, DetailedPlayers{{ID: 3, Name: "Carl", Score: 1500, Ping: 48}}, res)
}

func TestParseReply_EmptyLists(t *testing.T) {
	for _, op := range []Opcode{OpRules, OpDetailedPlayers, OpPlayers} {
		res, err := parseReply(op, append(header(), 0, 0), nil)
		require.NoError(t, err, op.String())
		require.NotNil(t, res)
		assert.Equal(t, op, res.Opcode())
	}

	res, err := parseReply(OpDetailedPlayers, append(header(), 0, 0), nil)
	require.NoError(t, err)
	assert.Empty(t, res.(DetailedPlayers))
	assert.NotNil(t, res.(DetailedPlayers))
}

func TestParseReply_Players(t *testing.T) {
	w := codec.New()
	_ = w.WriteUint16(2)
	for _, p := range []Player{{Name: "Sweet", Score: 7}, {Name: "Ryder", Score: 0}} {
		_ = w.WriteUint8(uint8(len(p.Name)))
		_ = w.WriteString(p.Name)
		_ = w.WriteUint32(p.Score)
	}

	res, err := parseReply(OpPlayers, append(header(), w.Bytes()...), nil)
	require.NoError(t, err)
	assert.Equal(t, Players{{Name: "Sweet", Score: 7}, {Name: "Ryder", Score: 0}}, res)
}

func TestParseReply_ShortDatagram(t *testing.T) {
	for _, op := range []Opcode{OpInfo, OpRules, OpDetailedPlayers, OpPlayers} {
		for n := 0; n < HeaderSize; n++ {
			_, err := parseReply(op, header()[:n], nil)
			require.ErrorIs(t, err, ErrMalformedResponse, "%s with %d bytes", op, n)
		}
	}
}

func TestParseReply_TruncatedPayload(t *testing.T) {
	full := infoPayload()
	for n := 0; n < len(full); n++ {
		_, err := parseReply(OpInfo, append(header(), full[:n]...), nil)
		require.ErrorIs(t, err, ErrMalformedResponse, "payload cut at %d", n)
		assert.NotErrorIs(t, err, codec.ErrTruncatedBuffer, "codec errors must not leak")
	}
}

func TestParseReply_CountExceedsPayload(t *testing.T) {
	w := codec.New()
	_ = w.WriteUint16(5)
	_ = w.WriteUint8(1)
	_ = w.WriteString("a")
	_ = w.WriteUint8(1)
	_ = w.WriteString("b")

	_, err := parseReply(OpRules, append(header(), w.Bytes()...), nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseReply_HugeTextLength(t *testing.T) {
	w := codec.New()
	_ = w.WriteBool(true)
	_ = w.WriteUint16(1)
	_ = w.WriteUint16(2)
	_ = w.WriteUint32(0xffffffff)

	_, err := parseReply(OpInfo, append(header(), w.Bytes()...), nil)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseReply_TextDecoder(t *testing.T) {
	upper := func(raw []byte) (string, error) { return string(bytes.ToUpper(raw)), nil }

	res, err := parseReply(OpInfo, append(header(), infoPayload()...), upper)
	require.NoError(t, err)
	assert.Equal(t, "TEST", res.(*Info).ServerName)
	assert.Equal(t, "EN", res.(*Info).Language)
}
