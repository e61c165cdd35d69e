// Package game sequences SA-MP query transactions into the views used by
// the API, the CLI probe and maintenance tasks.
package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/sampq/internal/charset"
	"github.com/woozymasta/sampq/internal/config"
	"github.com/woozymasta/sampq/internal/models"
	"github.com/woozymasta/sampq/internal/query"
)

// PlayerListLimit is the player count above which servers stop answering
// player list requests.
const PlayerListLimit = 100

// NewClient applies the query options to a client for host:port.
// With options.Resolve the host is looked up first; otherwise it must
// already be a dotted-quad IPv4 address.
func NewClient(ctx context.Context, host string, port int, options config.Query) (*query.Client, error) {
	address := host
	if options.Resolve {
		var err error
		if address, err = query.Resolve(ctx, nil, host); err != nil {
			return nil, err
		}
	}

	client, err := query.New(address, port)
	if err != nil {
		return nil, err
	}

	decode, err := charset.Lookup(options.Encoding)
	if err != nil {
		return nil, err
	}

	client.Decode = decode
	client.Timeout = options.Timeout
	client.BufferSize = options.BufferSize

	return client, nil
}

// Execute runs a single transaction for op against host:port.
func Execute(ctx context.Context, host string, port int, op query.Opcode, options config.Query) (query.Result, error) {
	client, err := NewClient(ctx, host, port, options)
	if err != nil {
		return nil, err
	}

	return client.Execute(ctx, op)
}

// QueryServer fetches info, rules and, below PlayerListLimit, the detailed
// player list, one transaction after another. A failed player list leaves
// Players empty instead of failing the whole status.
func QueryServer(ctx context.Context, host string, port int, options config.Query) (*models.Status, error) {
	client, err := NewClient(ctx, host, port, options)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	info, err := client.Info(ctx)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)

	rules, err := client.Rules(ctx)
	if err != nil {
		return nil, err
	}

	players := query.DetailedPlayers{}
	if info.Players > 0 && info.Players < PlayerListLimit {
		list, err := client.DetailedPlayers(ctx)
		if err != nil {
			log.Debug().
				Err(err).
				Str("address", client.Address()).
				Int("port", client.Port()).
				Msg("Player list query failed")
		} else {
			players = list
		}
	}

	return &models.Status{
		Address: client.Address(),
		Port:    client.Port(),
		Info:    *info,
		Rules:   rules,
		Players: players,
		Latency: latency,
	}, nil
}

// Ping measures the wall-clock time of one info transaction.
func Ping(ctx context.Context, host string, port int, options config.Query) (time.Duration, error) {
	client, err := NewClient(ctx, host, port, options)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	if _, err := client.Info(ctx); err != nil {
		return 0, err
	}

	return time.Since(start), nil
}
