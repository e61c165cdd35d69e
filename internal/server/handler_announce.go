package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/game"
	"github.com/woozymasta/sampq/internal/models"
	"github.com/woozymasta/sampq/internal/query"
)

// handleAnnounce registers the calling game server. The source IP is the
// server address, the body only carries the query port. Work is queued so
// the caller never waits for the query itself.
func (s *Server) handleAnnounce(w http.ResponseWriter, r *http.Request) {
	ip := GetRealIP(r, s.trustProxy)
	if ip == "::1" {
		ip = "127.0.0.1"
	}

	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		log.Debug().Str("ip", ip).Msg("Announce from non IPv4 address")
		http.Error(w, "IPv4 required", http.StatusBadRequest)
		return
	}
	ip = parsed.To4().String()

	if _, blocked := s.blocked[xxhash.Sum64String(ip)]; blocked {
		log.Debug().Str("ip", ip).Msg("Announce from blocked address")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req models.AnnounceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("Invalid JSON")
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Port < 0 || req.Port > 65535 {
		log.Debug().Str("ip", ip).Int("port", req.Port).Msg("Invalid port")
		http.Error(w, "Invalid port", http.StatusBadRequest)
		return
	}
	if req.Port == 0 {
		req.Port = query.DefaultPort
	}

	// Soft limit
	key := xxhash.Sum64String(fmt.Sprintf("%s:%d", ip, req.Port))
	if val, ok := s.seenCache.Load(key); ok {
		if lastSeen, ok := val.(time.Time); ok && time.Since(lastSeen) < s.softLimitDur {
			log.Trace().Str("ip", ip).Int("port", req.Port).Msg("Dropped by soft limit hit")
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
	}

	select {
	case s.queue <- announceJob{Req: req, Address: ip}:
		s.seenCache.Store(key, time.Now())
		log.Trace().Str("ip", ip).Int("port", req.Port).Msg("Announce queued")
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
	default:
		log.Warn().Str("ip", ip).Int("port", req.Port).Msg("Queue full, announce dropped")
		http.Error(w, "Queue full", http.StatusServiceUnavailable)
	}
}

// worker is a background goroutine that processes jobs from the announce queue.
func (s *Server) worker() {
	defer s.wg.Done()

	for job := range s.queue {
		s.processJob(job)
	}
}

// processJob queries the announced server, resolves its country and upserts
// the record. A server that does not answer is still stored without query
// data, so maintenance can re-check it later.
func (s *Server) processJob(job announceJob) {
	// queued jobs are dropped once shutdown has begun
	if s.ctx.Err() != nil {
		return
	}

	now := time.Now()
	srv := models.Server{
		Address:     job.Address,
		Port:        job.Req.Port,
		CountryCode: s.geoip.CountryCode(job.Address),
		FirstSeen:   now,
		LastSeen:    now,
	}

	status, err := game.QueryServer(s.ctx, job.Address, job.Req.Port, s.queryOptions)
	if err != nil {
		if s.ctx.Err() != nil {
			return
		}
		log.Debug().
			Err(err).
			Str("address", job.Address).
			Int("port", job.Req.Port).
			Msg("SA-MP query failed")
	} else {
		srv.ApplyStatus(status)
	}

	if err := s.storage.UpsertServer(srv); err != nil {
		log.Error().Err(err).Msg("Failed to save server to DB")
		return
	}

	log.Debug().
		Str("address", srv.Address).
		Int("port", srv.Port).
		Bool("queried", err == nil).
		Msg("Announce saved")
}
