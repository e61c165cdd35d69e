package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/woozymasta/sampq/internal/codec"
)

// Magic is the literal tag opening every request and reply.
const Magic = "SAMP"

// HeaderSize is the length of a request and of the echoed reply header.
const HeaderSize = len(Magic) + 4 + 2 + 1

// Request is the target and opcode of a single transaction.
type Request struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
	Opcode  Opcode `json:"opcode"`
}

// EncodeRequest builds the 11-byte request packet:
// magic, four address octets, port low byte, port high byte, opcode.
func EncodeRequest(req Request) ([]byte, error) {
	octets, err := parseOctets(req.Address)
	if err != nil {
		return nil, err
	}
	if req.Port < 0 || req.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidArgument, req.Port)
	}
	if !req.Opcode.Valid() {
		return nil, fmt.Errorf("%w: unsupported opcode %s", ErrInvalidArgument, req.Opcode)
	}

	buf := codec.New()
	if err := buf.WriteString(Magic); err != nil {
		return nil, err
	}
	if err := buf.WriteBytes(octets[:]); err != nil {
		return nil, err
	}
	if err := buf.WriteUint8(uint8(req.Port & 0xff)); err != nil {
		return nil, err
	}
	if err := buf.WriteUint8(uint8((req.Port >> 8) & 0xff)); err != nil {
		return nil, err
	}
	if err := buf.WriteUint8(uint8(req.Opcode)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ParseRequest decodes a request packet produced by EncodeRequest.
func ParseRequest(p []byte) (Request, error) {
	var req Request

	buf := codec.FromBytes(p)
	magic, err := buf.ReadBytes(len(Magic))
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if string(magic) != Magic {
		return req, fmt.Errorf("%w: bad magic %q", ErrInvalidArgument, magic)
	}

	octets, err := buf.ReadBytes(4)
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	req.Address = fmt.Sprintf("%d.%d.%d.%d", octets[0], octets[1], octets[2], octets[3])

	lo, err := buf.ReadUint8()
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	hi, err := buf.ReadUint8()
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	req.Port = int(lo) | int(hi)<<8

	op, err := buf.ReadUint8()
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	req.Opcode = Opcode(op)

	return req, nil
}

// parseOctets splits a dotted-quad IPv4 address into its four octets.
func parseOctets(address string) ([4]byte, error) {
	var octets [4]byte

	parts := strings.Split(address, ".")
	if len(parts) != 4 {
		return octets, fmt.Errorf("%w: address %q is not a dotted-quad IPv4", ErrInvalidArgument, address)
	}

	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return octets, fmt.Errorf("%w: address %q has bad octet %q", ErrInvalidArgument, address, part)
		}
		octets[i] = byte(n)
	}

	return octets, nil
}
