// Package server implements the HTTP server, middleware, and request handlers for the application.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/woozymasta/sampq/internal/config"
	"github.com/woozymasta/sampq/internal/geoip"
	"github.com/woozymasta/sampq/internal/storage"
)

// New creates a new Server instance with the provided storage, GeoIP provider, and configuration.
func New(store *storage.Repository, geo *geoip.Provider, cfg *config.Config) *Server {
	blocked := make(map[uint64]struct{}, len(cfg.Server.BlockedIPs))
	for _, ip := range cfg.Server.BlockedIPs {
		blocked[xxhash.Sum64String(ip)] = struct{}{}
	}

	workers := cfg.Server.Workers
	if workers <= 0 {
		workers = 10
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		storage:        store,
		geoip:          geo,
		queryOptions:   cfg.Query,
		authToken:      cfg.Server.AuthToken,
		blocked:        blocked,
		maxBody:        cfg.Server.MaxBodySize,
		trustProxy:     cfg.Server.TrustProxy,
		workers:        workers,
		hardLimitCount: cfg.RateLimit.HardLimitCount,
		hardLimitWin:   cfg.RateLimit.HardLimitWin,
		softLimitDur:   cfg.RateLimit.SoftLimitDur,

		queue:  make(chan announceJob, 1000),
		ctx:    ctx,
		cancel: cancel,
	}
}

// StartWorkers initializes the background worker pool for processing announce jobs
// and the cache cleanup routine.
func (s *Server) StartWorkers() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	go s.gcSoftLimitCache()
}

// StopWorkers cancels in-flight queries, closes the job queue and waits for
// the workers to exit. Jobs still queued are dropped.
func (s *Server) StopWorkers() {
	s.cancel()
	close(s.queue)
	s.wg.Wait()
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	admin := func(h http.HandlerFunc) http.Handler {
		return AdminAuthMiddleware(s.authToken, h)
	}

	mux.Handle("POST /api/announce", s.RateLimitMiddleware(http.HandlerFunc(s.handleAnnounce)))
	mux.Handle("GET /api/version", http.HandlerFunc(s.handleVersion))

	mux.Handle("GET /api/query", admin(s.handleQuery))
	mux.Handle("GET /api/status", admin(s.handleStatus))
	mux.Handle("GET /api/ping", admin(s.handlePing))
	mux.Handle("GET /api/servers", admin(s.handleServers))
	mux.Handle("GET /api/server", admin(s.handleGetServer))
	mux.Handle("DELETE /api/server", admin(s.handleDeleteServer))

	return s.LoggingMiddleware(mux)
}

// gcSoftLimitCache periodically cleans up expired entries from the soft rate-limit cache.
func (s *Server) gcSoftLimitCache() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			s.seenCache.Range(func(key, value any) bool {
				if t, ok := value.(time.Time); !ok || now.Sub(t) > s.softLimitDur {
					s.seenCache.Delete(key)
				}
				return true
			})
		}
	}
}
