// Package models defines the data structures used for API requests, query
// results and database persistence.
package models

import (
	"time"

	"github.com/woozymasta/sampq/internal/query"
)

// AnnounceRequest is the payload a game server posts to register itself.
// The source IP of the request is the server address.
type AnnounceRequest struct {
	Port int `json:"port"`
}

// Status is the combined live view of a server assembled from several
// query transactions.
type Status struct {
	Info    query.Info            `json:"info"`
	Address string                `json:"address"`
	Rules   query.Rules           `json:"rules"`
	Players query.DetailedPlayers `json:"players"`
	Latency time.Duration         `json:"latency"`
	Port    int                   `json:"port"`
}

// Server represents a tracked game server stored in the database.
type Server struct {
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	Address     string    `json:"address"`
	Hostname    string    `json:"hostname"`
	GameMode    string    `json:"gamemode"`
	Language    string    `json:"language"`
	Version     string    `json:"version"`
	MapName     string    `json:"map_name"`
	WebURL      string    `json:"web_url"`
	CountryCode string    `json:"country_code"`
	Port        int       `json:"port"`
	Count       int64     `json:"count"`
	Players     int       `json:"players"`
	MaxPlayers  int       `json:"max_players"`
	Closed      bool      `json:"closed"`

	// Queried is set once the server has answered a query, even with
	// empty text fields.
	Queried bool `json:"queried"`
}

// ApplyStatus copies live query data into the stored record.
func (s *Server) ApplyStatus(st *Status) {
	s.Hostname = st.Info.ServerName
	s.GameMode = st.Info.GameModeName
	s.Language = st.Info.Language
	s.Players = int(st.Info.Players)
	s.MaxPlayers = int(st.Info.MaxPlayers)
	s.Closed = st.Info.Closed
	s.Queried = true
	s.Version, _ = st.Rules.Get("version")
	s.MapName, _ = st.Rules.Get("mapname")
	s.WebURL, _ = st.Rules.Get("weburl")
}
