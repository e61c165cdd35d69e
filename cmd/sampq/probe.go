package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/woozymasta/sampq/internal/config"
	"github.com/woozymasta/sampq/internal/game"
	"github.com/woozymasta/sampq/internal/query"
)

// probe queries the configured target once and writes the result as JSON.
func probe(ctx context.Context, opts config.Query, w io.Writer) error {
	var (
		out any
		err error
	)

	if opts.Opcode == config.OpcodeAll {
		out, err = game.QueryServer(ctx, opts.Address, opts.Port, opts)
	} else {
		var op query.Opcode
		if op, err = query.ParseOpcode(opts.Opcode); err != nil {
			return err
		}
		out, err = game.Execute(ctx, opts.Address, opts.Port, op, opts)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
