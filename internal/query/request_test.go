package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest_Layout(t *testing.T) {
	pkt, err := EncodeRequest(Request{Address: "192.168.1.20", Port: 7777, Opcode: OpInfo})
	require.NoError(t, err)

	want := []byte{'S', 'A', 'M', 'P', 192, 168, 1, 20, 0x61, 0x1e, 'i'}
	assert.Equal(t, want, pkt)
	assert.Len(t, pkt, HeaderSize)
}

func TestEncodeRequest_RoundTrip(t *testing.T) {
	reqs := []Request{
		{Address: "127.0.0.1", Port: 7777, Opcode: OpInfo},
		{Address: "0.0.0.0", Port: 0, Opcode: OpRules},
		{Address: "255.255.255.255", Port: 65535, Opcode: OpDetailedPlayers},
		{Address: "10.0.2.3", Port: 256, Opcode: OpPlayers},
	}

	for _, req := range reqs {
		pkt, err := EncodeRequest(req)
		require.NoError(t, err)

		got, err := ParseRequest(pkt)
		require.NoError(t, err)
		assert.Equal(t, req, got)
	}
}

func TestEncodeRequest_InvalidArgument(t *testing.T) {
	bad := []Request{
		{Address: "localhost", Port: 7777, Opcode: OpInfo},
		{Address: "1.2.3", Port: 7777, Opcode: OpInfo},
		{Address: "1.2.3.4.5", Port: 7777, Opcode: OpInfo},
		{Address: "1.2.3.256", Port: 7777, Opcode: OpInfo},
		{Address: "1.2.-3.4", Port: 7777, Opcode: OpInfo},
		{Address: "1.2.3.4", Port: -1, Opcode: OpInfo},
		{Address: "1.2.3.4", Port: 65536, Opcode: OpInfo},
		{Address: "1.2.3.4", Port: 7777, Opcode: 'p'},
	}

	for _, req := range bad {
		_, err := EncodeRequest(req)
		require.ErrorIs(t, err, ErrInvalidArgument, "%+v", req)
	}
}

func TestParseRequest_Errors(t *testing.T) {
	_, err := ParseRequest([]byte("SAMP\x7f\x00"))
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ParseRequest([]byte("XXXX\x7f\x00\x00\x01\x61\x1ei"))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseOpcode(t *testing.T) {
	cases := map[string]Opcode{
		"i": OpInfo, "info": OpInfo, "R": OpRules, "rules": OpRules,
		"d": OpDetailedPlayers, "detailed": OpDetailedPlayers,
		"c": OpPlayers, " players ": OpPlayers,
	}
	for in, want := range cases {
		got, err := ParseOpcode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseOpcode("p")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOpcode_Text(t *testing.T) {
	b, err := OpRules.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "r", string(b))

	var op Opcode
	require.NoError(t, op.UnmarshalText([]byte("detailed")))
	assert.Equal(t, OpDetailedPlayers, op)

	_, err = Opcode('x').MarshalText()
	require.Error(t, err)
}
