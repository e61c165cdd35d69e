package server

import (
	"context"
	"sync"
	"time"

	"github.com/woozymasta/sampq/internal/config"
	"github.com/woozymasta/sampq/internal/geoip"
	"github.com/woozymasta/sampq/internal/models"
	"github.com/woozymasta/sampq/internal/storage"
)

// Server holds the dependencies, configuration, and runtime state required
// to handle HTTP requests and background announce processing.
type Server struct {
	// storage persists tracked servers.
	storage *storage.Repository

	// geoip resolves server addresses to country codes. It can be nil.
	geoip *geoip.Provider

	// blocked is a set of xxhash sums of addresses that may not announce.
	blocked map[uint64]struct{}

	// queue passes announce jobs from HTTP handlers to background workers.
	queue chan announceJob

	// ctx is cancelled when shutdown begins; it aborts in-flight queries
	// and ends the cleanup routines.
	ctx    context.Context
	cancel context.CancelFunc

	// seenCache maps xxhash(address:port) to the last accepted announce time
	// for the soft rate limit.
	seenCache sync.Map

	// authToken is required to access administrative endpoints.
	authToken string

	// queryOptions configure every SA-MP query issued by the server.
	queryOptions config.Query

	wg sync.WaitGroup

	// maxBody limits the size of incoming request bodies.
	maxBody int64

	// workers is the size of the announce worker pool.
	workers int

	// hardLimitCount requests per IP within hardLimitWin.
	hardLimitCount int
	hardLimitWin   time.Duration

	// softLimitDur drops repeated announces of the same target within this window.
	softLimitDur time.Duration

	// trustProxy enables X-Forwarded-For / CF-Connecting-IP handling.
	trustProxy bool
}

// announceJob is a unit of work for the background workers.
type announceJob struct {
	// Address is the IPv4 address of the announcing server.
	Address string

	Req models.AnnounceRequest
}
