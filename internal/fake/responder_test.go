package fake

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/sampq/internal/query"
)

func TestResponder_EchoesHeader(t *testing.T) {
	r := &Responder{Rules: query.Rules{{Name: "lagcomp", Value: "On"}}}
	require.NoError(t, r.Start())
	defer func() { _ = r.Close() }()

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: r.Port()})
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	req, err := query.EncodeRequest(query.Request{Address: "127.0.0.1", Port: r.Port(), Opcode: query.OpRules})
	require.NoError(t, err)
	_, err = conn.Write(req)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	assert.Equal(t, req, buf[:query.HeaderSize])
	payload, err := r.Payload(query.OpRules)
	require.NoError(t, err)
	assert.Equal(t, payload, buf[query.HeaderSize:n])
}

func TestResponder_PayloadUnknownOpcode(t *testing.T) {
	_, err := (&Responder{}).Payload('x')
	require.ErrorIs(t, err, query.ErrInvalidArgument)
}
