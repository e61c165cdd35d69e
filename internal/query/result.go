package query

// Result is the decoded payload of one transaction. The concrete type is
// selected by the requested opcode: *Info, Rules, DetailedPlayers or Players.
type Result interface {
	Opcode() Opcode
}

// Info is the reply to OpInfo.
type Info struct {
	ServerName   string `json:"server_name"`
	GameModeName string `json:"gamemode_name"`
	Language     string `json:"language"`
	Players      uint16 `json:"players"`
	MaxPlayers   uint16 `json:"max_players"`
	Closed       bool   `json:"closed"`
}

// Rule is one configured server rule.
type Rule struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Rules is the reply to OpRules, in wire order.
type Rules []Rule

// Get returns the value of the first rule named name.
func (r Rules) Get(name string) (string, bool) {
	for _, rule := range r {
		if rule.Name == name {
			return rule.Value, true
		}
	}

	return "", false
}

// DetailedPlayer is one entry of the OpDetailedPlayers reply.
type DetailedPlayer struct {
	Name  string `json:"name"`
	Score uint32 `json:"score"`
	Ping  uint32 `json:"ping"`
	ID    uint8  `json:"id"`
}

// DetailedPlayers is the reply to OpDetailedPlayers, in wire order.
type DetailedPlayers []DetailedPlayer

// Player is one entry of the OpPlayers reply.
type Player struct {
	Name  string `json:"name"`
	Score uint32 `json:"score"`
}

// Players is the reply to OpPlayers, in wire order.
type Players []Player

func (*Info) Opcode() Opcode { return OpInfo }
func (Rules) Opcode() Opcode { return OpRules }
func (DetailedPlayers) Opcode() Opcode { return OpDetailedPlayers }
func (Players) Opcode() Opcode { return OpPlayers }
