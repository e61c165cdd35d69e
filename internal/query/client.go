// Package query implements the SA-MP UDP query protocol: one request packet,
// one reply datagram, decoded into one of four result shapes.
//
// Request (11 bytes):
//
//	[4] "SAMP"
//	[4] IPv4 octets in dotted-quad order
//	[1] port low byte
//	[1] port high byte
//	[1] opcode ('i', 'r', 'd' or 'c')
//
// Replies echo the 11-byte request header, followed by the opcode payload.
// All integers are unsigned little-endian.
package query

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/codec"
)

const (
	// DefaultAddress is queried when no address is given.
	DefaultAddress = "127.0.0.1"

	// DefaultPort is the well-known SA-MP server port.
	DefaultPort = 7777

	// DefaultTimeout bounds the wait for a reply.
	DefaultTimeout = 2 * time.Second

	// DefaultBufferSize fits any UDP datagram.
	DefaultBufferSize = 65535
)

// Client queries a single SA-MP server. It holds no socket between calls,
// so one Client may be used from several goroutines at once.
type Client struct {
	// Decode converts length-prefixed text fields; nil keeps raw bytes.
	Decode codec.TextDecoder

	// dial opens the per-transaction socket; replaced in tests.
	dial func(target *net.UDPAddr) (net.Conn, error)

	address string
	octets  [4]byte

	// Timeout for a single transaction, DefaultTimeout when zero.
	Timeout time.Duration

	port int

	// BufferSize of the receive buffer, DefaultBufferSize when zero.
	BufferSize uint16
}

// New validates the target and returns a Client for it. An empty address
// means the loopback address and port 0 means DefaultPort.
// No network I/O happens here.
func New(address string, port int) (*Client, error) {
	if address == "" {
		address = DefaultAddress
	}
	if port == 0 {
		port = DefaultPort
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidArgument, port)
	}

	octets, err := parseOctets(address)
	if err != nil {
		return nil, err
	}

	return &Client{
		address: address,
		octets:  octets,
		port:    port,
		dial:    dialUDP,
	}, nil
}

// Address returns the dotted-quad target address.
func (c *Client) Address() string {
	return c.address
}

// Port returns the target port.
func (c *Client) Port() int {
	return c.port
}

// Execute performs one request/reply cycle for op. The outcome is exactly
// one of: a decoded Result, a send failure, a timeout, a malformed reply, or
// the cancellation of ctx. The socket is released on every path.
func (c *Client) Execute(ctx context.Context, op Opcode) (Result, error) {
	packet, err := EncodeRequest(Request{Address: c.address, Port: c.port, Opcode: op})
	if err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	size := int(c.BufferSize)
	if size == 0 {
		size = DefaultBufferSize
	}

	target := &net.UDPAddr{IP: net.IP(c.octets[:]), Port: c.port}
	conn, err := c.dial(target)
	if err != nil {
		return nil, fmt.Errorf("%w: open socket: %v", ErrTransport, err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write(packet); err != nil {
		return nil, fmt.Errorf("%w: send to %s: %v", ErrTransport, target, err)
	}

	deadline := time.Now().Add(timeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("%w: set deadline: %v", ErrTransport, err)
	}

	// Cancellation moves the deadline into the past so the pending read
	// returns at once; the read below stays the only consumer of the socket.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
	})
	defer stop()

	reply := make([]byte, size)
	n, err := readReply(conn, reply)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("query: %s %s:%d: %w", op, c.address, c.port, ctxErr)
		}
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, &HostUnavailableError{Address: c.address, Port: c.port, Timeout: timeout}
		}

		return nil, fmt.Errorf("%w: receive from %s: %v", ErrTransport, target, err)
	}

	log.Trace().
		Str("address", c.address).
		Int("port", c.port).
		Str("opcode", op.String()).
		Int("size", n).
		Msg("Query reply received")

	return parseReply(op, reply[:n], c.Decode)
}

// Info executes OpInfo.
func (c *Client) Info(ctx context.Context) (*Info, error) {
	res, err := c.Execute(ctx, OpInfo)
	if err != nil {
		return nil, err
	}

	return res.(*Info), nil
}

// Rules executes OpRules.
func (c *Client) Rules(ctx context.Context) (Rules, error) {
	res, err := c.Execute(ctx, OpRules)
	if err != nil {
		return nil, err
	}

	return res.(Rules), nil
}

// DetailedPlayers executes OpDetailedPlayers.
func (c *Client) DetailedPlayers(ctx context.Context) (DetailedPlayers, error) {
	res, err := c.Execute(ctx, OpDetailedPlayers)
	if err != nil {
		return nil, err
	}

	return res.(DetailedPlayers), nil
}

// Players executes OpPlayers.
func (c *Client) Players(ctx context.Context) (Players, error) {
	res, err := c.Execute(ctx, OpPlayers)
	if err != nil {
		return nil, err
	}

	return res.(Players), nil
}

// parseReply checks the reply length, drops the echoed header and decodes
// the payload. Codec failures are reported as ErrMalformedResponse only.
func parseReply(op Opcode, datagram []byte, decode codec.TextDecoder) (Result, error) {
	if len(datagram) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrMalformedResponse, len(datagram), HeaderSize)
	}

	payload, err := codec.FromBytes(datagram).Slice(HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	res, err := Decode(op, payload, decode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, op, err)
	}

	return res, nil
}

// readReply returns the first datagram from the peer. ICMP port unreachable
// surfaces as ECONNREFUSED on a connected socket; it is skipped so a closed
// port ends in the read deadline like a silent host.
func readReply(conn net.Conn, reply []byte) (int, error) {
	for {
		n, err := conn.Read(reply)
		if err != nil && errors.Is(err, syscall.ECONNREFUSED) {
			continue
		}

		return n, err
	}
}

// dialUDP binds an IPv4 socket to an ephemeral local port, connected to
// target so the kernel drops datagrams from any other source.
func dialUDP(target *net.UDPAddr) (net.Conn, error) {
	conn, err := net.DialUDP("udp4", nil, target)
	if err != nil {
		return nil, err
	}

	return conn, nil
}
