// Package maintenance provides tools for cleaning and refreshing the server database.
package maintenance

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/config"
	"github.com/woozymasta/sampq/internal/game"
	"github.com/woozymasta/sampq/internal/geoip"
	"github.com/woozymasta/sampq/internal/models"
	"github.com/woozymasta/sampq/internal/storage"
)

// Workers is the number of concurrent re-query workers.
const Workers = 10

// Run checks if any maintenance flags are set and executes the corresponding task.
// Returns true if a maintenance task was executed (indicating the program should exit).
func Run(ctx context.Context, cfg *config.Config, store *storage.Repository, geo *geoip.Provider) bool {
	if cfg.Storage.PruneEmpty {
		log.Info().Msg("Pruning servers without query data...")

		count, err := store.DeleteEmptyServers()
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune servers")
		} else {
			log.Info().Int64("deleted", count).Msg("Prune finished")
		}

		return true
	}

	var onlyEmpty bool
	switch {
	case cfg.Storage.CheckInactive:
		onlyEmpty = true
	case cfg.Storage.CheckAll:
		onlyEmpty = false
	default:
		return false
	}

	servers, err := store.GetServersSubset(onlyEmpty)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		return true
	}

	if len(servers) == 0 {
		log.Info().Msg("No servers found for maintenance")
		return true
	}

	log.Info().
		Int("count", len(servers)).
		Bool("only_inactive", onlyEmpty).
		Int("workers", Workers).
		Msg("Starting re-check task")
	Recheck(ctx, servers, store, geo, cfg.Query)
	log.Info().Msg("Maintenance task completed")

	return true
}

// Recheck re-queries servers with a worker pool, updating those that answer
// and deleting those that do not.
func Recheck(ctx context.Context, servers []models.Server, store *storage.Repository, geo *geoip.Provider, opts config.Query) {
	jobs := make(chan models.Server, len(servers))
	var wg sync.WaitGroup

	for range Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for srv := range jobs {
				processServer(ctx, srv, store, geo, opts)
			}
		}()
	}

	for _, s := range servers {
		jobs <- s
	}
	close(jobs)

	wg.Wait()
}

func processServer(ctx context.Context, srv models.Server, store *storage.Repository, geo *geoip.Provider, opts config.Query) {
	logCtx := log.With().
		Str("address", srv.Address).
		Int("port", srv.Port).
		Logger()

	if srv.Port <= 0 || srv.Port > 65535 {
		logCtx.Debug().Msg("Invalid port, deleting server")
		if err := store.DeleteServer(srv.Address, srv.Port); err != nil {
			logCtx.Error().Err(err).Msg("Failed to delete invalid server")
		}
		return
	}

	status, err := game.QueryServer(ctx, srv.Address, srv.Port, opts)
	if err != nil {
		if ctx.Err() != nil {
			return
		}

		logCtx.Debug().Err(err).Msg("Server unreachable, deleting server")
		if err := store.DeleteServer(srv.Address, srv.Port); err != nil {
			logCtx.Error().Err(err).Msg("Failed to delete unreachable server")
		}
		return
	}

	srv.ApplyStatus(status)
	srv.CountryCode = geo.CountryCode(srv.Address)
	srv.LastSeen = time.Now()

	if err := store.UpsertServer(srv); err != nil {
		logCtx.Error().Err(err).Msg("Failed to update server")
	} else {
		logCtx.Trace().Msg("Server updated successfully")
	}
}
