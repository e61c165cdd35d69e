package fake

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/codec"
	"github.com/woozymasta/sampq/internal/query"
)

// Responder is a loopback SA-MP server that answers query requests from
// its configured state. Configure the fields before calling Start.
type Responder struct {
	// Encode converts text fields to wire bytes; nil writes UTF-8 as-is.
	Encode func(string) ([]byte, error)

	// Reply, when set, replaces the generated datagram for every request.
	// Returning nil sends nothing.
	Reply func(request []byte) []byte

	Info            query.Info
	Rules           query.Rules
	DetailedPlayers query.DetailedPlayers
	Players         query.Players

	conn *net.UDPConn
	wg   sync.WaitGroup

	requests atomic.Int64

	// Silent drops every request, simulating an unreachable host.
	Silent bool
}

// Start binds the responder to an ephemeral loopback port and serves in the background.
func (r *Responder) Start() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		return err
	}
	r.conn = conn

	r.wg.Add(1)
	go r.serve()

	return nil
}

// Close stops serving and waits for the loop to exit.
func (r *Responder) Close() error {
	err := r.conn.Close()
	r.wg.Wait()

	return err
}

// Address returns the loopback address the responder listens on.
func (r *Responder) Address() string {
	return "127.0.0.1"
}

// Port returns the bound UDP port.
func (r *Responder) Port() int {
	return r.conn.LocalAddr().(*net.UDPAddr).Port
}

// Requests returns how many datagrams were received.
func (r *Responder) Requests() int64 {
	return r.requests.Load()
}

func (r *Responder) serve() {
	defer r.wg.Done()

	buf := make([]byte, 2048)
	for {
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				log.Debug().Err(err).Msg("Fake responder read failed")
			}
			return
		}
		r.requests.Add(1)

		if r.Silent {
			continue
		}

		reply, err := r.reply(buf[:n])
		if err != nil {
			log.Debug().Err(err).Str("from", addr.String()).Msg("Fake responder dropped request")
			continue
		}
		if reply == nil {
			continue
		}

		if _, err := r.conn.WriteToUDP(reply, addr); err != nil {
			log.Debug().Err(err).Str("to", addr.String()).Msg("Fake responder write failed")
		}
	}
}

func (r *Responder) reply(request []byte) ([]byte, error) {
	if r.Reply != nil {
		return r.Reply(append([]byte(nil), request...)), nil
	}

	req, err := query.ParseRequest(request)
	if err != nil {
		return nil, err
	}

	payload, err := r.Payload(req.Opcode)
	if err != nil {
		return nil, err
	}

	return append(append([]byte(nil), request[:query.HeaderSize]...), payload...), nil
}

// Payload encodes the reply body for op from the responder state.
func (r *Responder) Payload(op query.Opcode) ([]byte, error) {
	w := codec.New()

	switch op {
	case query.OpInfo:
		if err := w.WriteBool(r.Info.Closed); err != nil {
			return nil, err
		}
		if err := w.WriteUint16(r.Info.Players); err != nil {
			return nil, err
		}
		if err := w.WriteUint16(r.Info.MaxPlayers); err != nil {
			return nil, err
		}
		for _, s := range []string{r.Info.ServerName, r.Info.GameModeName, r.Info.Language} {
			if err := r.writeText32(w, s); err != nil {
				return nil, err
			}
		}

	case query.OpRules:
		if err := w.WriteUint16(uint16(len(r.Rules))); err != nil {
			return nil, err
		}
		for _, rule := range r.Rules {
			if err := r.writeText8(w, rule.Name); err != nil {
				return nil, err
			}
			if err := r.writeText8(w, rule.Value); err != nil {
				return nil, err
			}
		}

	case query.OpDetailedPlayers:
		if err := w.WriteUint16(uint16(len(r.DetailedPlayers))); err != nil {
			return nil, err
		}
		for _, p := range r.DetailedPlayers {
			if err := w.WriteUint8(p.ID); err != nil {
				return nil, err
			}
			if err := r.writeText8(w, p.Name); err != nil {
				return nil, err
			}
			if err := w.WriteUint32(p.Score); err != nil {
				return nil, err
			}
			if err := w.WriteUint32(p.Ping); err != nil {
				return nil, err
			}
		}

	case query.OpPlayers:
		if err := w.WriteUint16(uint16(len(r.Players))); err != nil {
			return nil, err
		}
		for _, p := range r.Players {
			if err := r.writeText8(w, p.Name); err != nil {
				return nil, err
			}
			if err := w.WriteUint32(p.Score); err != nil {
				return nil, err
			}
		}

	default:
		return nil, query.ErrInvalidArgument
	}

	return w.Bytes(), nil
}

func (r *Responder) encode(s string) ([]byte, error) {
	if r.Encode == nil {
		return []byte(s), nil
	}

	return r.Encode(s)
}

func (r *Responder) writeText8(w *codec.Buffer, s string) error {
	raw, err := r.encode(s)
	if err != nil {
		return err
	}
	if len(raw) > 0xff {
		raw = raw[:0xff]
	}
	if err := w.WriteUint8(uint8(len(raw))); err != nil {
		return err
	}

	return w.WriteBytes(raw)
}

func (r *Responder) writeText32(w *codec.Buffer, s string) error {
	raw, err := r.encode(s)
	if err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(raw))); err != nil {
		return err
	}

	return w.WriteBytes(raw)
}
