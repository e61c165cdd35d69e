package query

import (
	"fmt"
	"strings"
)

// Opcode selects one of the four query variants. Its value is the character
// code sent as the last byte of the request.
type Opcode byte

const (
	OpInfo            Opcode = 'i'
	OpRules           Opcode = 'r'
	OpDetailedPlayers Opcode = 'd'
	OpPlayers         Opcode = 'c'
)

// Valid reports whether o is one of the supported opcodes.
func (o Opcode) Valid() bool {
	switch o {
	case OpInfo, OpRules, OpDetailedPlayers, OpPlayers:
		return true
	}

	return false
}

func (o Opcode) String() string {
	switch o {
	case OpInfo:
		return "info"
	case OpRules:
		return "rules"
	case OpDetailedPlayers:
		return "detailed"
	case OpPlayers:
		return "players"
	}

	return fmt.Sprintf("opcode(%#02x)", byte(o))
}

// ParseOpcode accepts either the single-character code or the opcode name.
func ParseOpcode(s string) (Opcode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		if op := Opcode(s[0]); op.Valid() {
			return op, nil
		}
	}

	for _, op := range []Opcode{OpInfo, OpRules, OpDetailedPlayers, OpPlayers} {
		if s == op.String() {
			return op, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown opcode %q", ErrInvalidArgument, s)
}

// MarshalText encodes the opcode as its single-character code.
func (o Opcode) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: unsupported opcode %s", ErrInvalidArgument, o)
	}

	return []byte{byte(o)}, nil
}

// UnmarshalText accepts anything ParseOpcode does.
func (o *Opcode) UnmarshalText(text []byte) error {
	op, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*o = op

	return nil
}
