package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/game"
	"github.com/woozymasta/sampq/internal/models"
	"github.com/woozymasta/sampq/internal/query"
	"github.com/woozymasta/sampq/internal/vars"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeQueryError maps query failures to HTTP statuses.
func writeQueryError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, query.ErrInvalidArgument), errors.Is(err, query.ErrResolve):
		status = http.StatusBadRequest
	case errors.Is(err, query.ErrHostUnavailable):
		status = http.StatusGatewayTimeout
	case errors.Is(err, query.ErrMalformedResponse):
		status = http.StatusBadGateway
	case errors.Is(err, query.ErrTransport):
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// targetParams reads ?host=&port= (port optional, default 7777).
func targetParams(r *http.Request) (string, int, error) {
	host := r.URL.Query().Get("host")
	if host == "" {
		return "", 0, errors.New("missing host")
	}

	portStr := r.URL.Query().Get("port")
	if portStr == "" {
		return host, query.DefaultPort, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, errors.New("invalid port")
	}

	return host, port, nil
}

// handleVersion returns build information.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vars.Info())
}

// handleQuery performs one live query transaction.
// Query params: ?host=1.2.3.4&port=7777&opcode=r
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	host, port, err := targetParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	op := query.OpInfo
	if raw := r.URL.Query().Get("opcode"); raw != "" {
		if op, err = query.ParseOpcode(raw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	res, err := game.Execute(r.Context(), host, port, op, s.queryOptions)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"opcode": op,
		"result": res,
	})
}

// handleStatus returns the combined info, rules and players of a server.
// Query params: ?host=1.2.3.4&port=7777
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	host, port, err := targetParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := game.QueryServer(r.Context(), host, port, s.queryOptions)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// handlePing measures the round trip of an info query.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	host, port, err := targetParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	latency, err := game.Ping(r.Context(), host, port, s.queryOptions)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"host":       host,
		"port":       port,
		"latency_ms": latency.Milliseconds(),
	})
}

// handleServers returns all tracked servers.
func (s *Server) handleServers(w http.ResponseWriter, _ *http.Request) {
	servers, err := s.storage.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if servers == nil {
		servers = []models.Server{}
	}

	writeJSON(w, http.StatusOK, servers)
}

// handleGetServer returns one tracked server.
// Query params: ?host=1.2.3.4&port=7777
func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	host, port, err := targetParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	srv, err := s.storage.GetServer(host, port)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch server")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if srv == nil {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, srv)
}

// handleDeleteServer removes a tracked server.
// Query params: ?host=1.2.3.4&port=7777
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	host, port, err := targetParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.DeleteServer(host, port); err != nil {
		log.Error().Err(err).
			Str("address", host).
			Int("port", port).
			Msg("Failed to delete server")

		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("address", host).
		Int("port", port).
		Msg("Server deleted manually")

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Server deleted"})
}
