package query

import (
	"fmt"

	"github.com/woozymasta/sampq/internal/codec"
)

// Decode parses a reply payload (header already stripped) for op.
// Text fields are converted with decode; nil keeps the raw bytes.
func Decode(op Opcode, buf *codec.Buffer, decode codec.TextDecoder) (Result, error) {
	switch op {
	case OpInfo:
		return decodeInfo(buf, decode)
	case OpRules:
		return decodeRules(buf, decode)
	case OpDetailedPlayers:
		return decodeDetailedPlayers(buf, decode)
	case OpPlayers:
		return decodePlayers(buf, decode)
	}

	return nil, fmt.Errorf("%w: unsupported opcode %s", ErrInvalidArgument, op)
}

func decodeInfo(buf *codec.Buffer, decode codec.TextDecoder) (info *Info, err error) {
	info = &Info{}

	if info.Closed, err = buf.ReadBool(); err != nil {
		return nil, err
	}
	if info.Players, err = buf.ReadUint16(); err != nil {
		return nil, err
	}
	if info.MaxPlayers, err = buf.ReadUint16(); err != nil {
		return nil, err
	}
	if info.ServerName, err = readText32(buf, decode); err != nil {
		return nil, err
	}
	if info.GameModeName, err = readText32(buf, decode); err != nil {
		return nil, err
	}
	if info.Language, err = readText32(buf, decode); err != nil {
		return nil, err
	}

	return info, nil
}

func decodeRules(buf *codec.Buffer, decode codec.TextDecoder) (Rules, error) {
	count, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}

	// each rule needs at least its two length bytes
	rules := make(Rules, 0, capacity(count, buf.Remaining(), 2))
	for i := 0; i < int(count); i++ {
		var rule Rule
		if rule.Name, err = readText8(buf, decode); err != nil {
			return nil, err
		}
		if rule.Value, err = readText8(buf, decode); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

func decodeDetailedPlayers(buf *codec.Buffer, decode codec.TextDecoder) (DetailedPlayers, error) {
	count, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}

	players := make(DetailedPlayers, 0, capacity(count, buf.Remaining(), 10))
	for i := 0; i < int(count); i++ {
		var p DetailedPlayer
		if p.ID, err = buf.ReadUint8(); err != nil {
			return nil, err
		}
		if p.Name, err = readText8(buf, decode); err != nil {
			return nil, err
		}
		if p.Score, err = buf.ReadUint32(); err != nil {
			return nil, err
		}
		if p.Ping, err = buf.ReadUint32(); err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, nil
}

func decodePlayers(buf *codec.Buffer, decode codec.TextDecoder) (Players, error) {
	count, err := buf.ReadUint16()
	if err != nil {
		return nil, err
	}

	players := make(Players, 0, capacity(count, buf.Remaining(), 5))
	for i := 0; i < int(count); i++ {
		var p Player
		if p.Name, err = readText8(buf, decode); err != nil {
			return nil, err
		}
		if p.Score, err = buf.ReadUint32(); err != nil {
			return nil, err
		}
		players = append(players, p)
	}

	return players, nil
}

// readText8 reads a text field prefixed by a uint8 length.
func readText8(buf *codec.Buffer, decode codec.TextDecoder) (string, error) {
	n, err := buf.ReadUint8()
	if err != nil {
		return "", err
	}

	return buf.ReadText(int(n), decode)
}

// readText32 reads a text field prefixed by a uint32 length.
func readText32(buf *codec.Buffer, decode codec.TextDecoder) (string, error) {
	n, err := buf.ReadUint32()
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(buf.Remaining()) {
		return "", fmt.Errorf("%w: text length %d exceeds %d remaining bytes",
			codec.ErrTruncatedBuffer, n, buf.Remaining())
	}

	return buf.ReadText(int(n), decode)
}

// capacity bounds the preallocation for count records by what the remaining
// bytes could possibly hold.
func capacity(count uint16, remaining, minRecord int) int {
	return min(int(count), remaining/minRecord)
}
