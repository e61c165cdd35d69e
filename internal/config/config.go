// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/sampq/internal/charset"
	"github.com/woozymasta/sampq/internal/logger"
	"github.com/woozymasta/sampq/internal/query"
	"github.com/woozymasta/sampq/internal/vars"
)

// OpcodeAll asks the probe for the combined info, rules and players view.
const OpcodeAll = "all"

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server    Server        `group:"Server Options" env-namespace:"SAMPQ"`
	Storage   Storage       `group:"Storage Options" namespace:"db" env-namespace:"SAMPQ_DB"`
	GeoIP     GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"SAMPQ_GEOIP"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"SAMPQ_RATE_LIMIT"`
	Query     Query         `group:"Query Options" namespace:"query" env-namespace:"SAMPQ_QUERY"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"SAMPQ_LOG"`

	Probe   bool `short:"p" long:"probe" description:"Query the configured target once, print JSON and exit"`
	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Address     string   `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken   string   `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Admin authentication token"`
	BlockedIPs  []string `long:"blocked-ip" env:"BLOCKED_IPS" description:"Addresses never accepted by announce" env-delim:","`
	MaxBodySize int64    `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"512"`
	Workers     int      `long:"workers" env:"WORKERS" description:"Announce worker count" default:"10"`
	TrustProxy  bool     `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Storage holds database configuration.
type Storage struct {
	// betteralign:ignore

	Path          string `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"sampq.db"`
	PruneEmpty    bool   `long:"prune-empty" description:"Delete servers that never answered a query"`
	CheckInactive bool   `long:"check-inactive" description:"Re-query servers without data. Update if UP, delete if DOWN"`
	CheckAll      bool   `long:"check-all" description:"Re-query ALL servers. Update if UP, delete if DOWN"`
	GenerateCount int    `long:"gen-fake-data" hidden:"true"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file" default:"sampq.mmdb"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// Query holds SA-MP query protocol configuration.
type Query struct {
	// betteralign:ignore

	Address    string        `long:"address" env:"ADDRESS" description:"Target address for --probe" default:"127.0.0.1"`
	Port       int           `long:"port" env:"PORT" description:"Target port for --probe" default:"7777"`
	Opcode     string        `long:"opcode" env:"OPCODE" description:"Probe opcode (i, r, d, c or all)" default:"all"`
	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"2s"`
	Encoding   string        `long:"encoding" env:"ENCODING" description:"Codepage of server text (raw to disable)" default:"windows-1251"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Reply buffer size" default:"65535"`
	Resolve    bool          `long:"resolve" env:"RESOLVE" description:"Resolve host names via DNS before querying"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: requests count" default:"8"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
	SoftLimitDur   time.Duration `long:"soft" env:"SOFT" description:"Soft limit: ignore announce if seen within duration" default:"5m"`
}

// Validate checks options that go-flags cannot express.
func (q Query) Validate() error {
	if q.Opcode != OpcodeAll {
		if _, err := query.ParseOpcode(q.Opcode); err != nil {
			return err
		}
	}

	if q.Port < 0 || q.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", query.ErrInvalidArgument, q.Port)
	}

	if _, err := charset.Lookup(q.Encoding); err != nil {
		return err
	}

	return nil
}

// Maintenance reports whether a one-off database task was requested.
func (s Storage) Maintenance() bool {
	return s.PruneEmpty || s.CheckInactive || s.CheckAll || s.GenerateCount > 0
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := parse(os.Args[1:])
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	if cfg.Server.AuthToken == "" && !cfg.Probe && !cfg.Storage.Maintenance() {
		fmt.Fprintln(os.Stderr,
			"Required flag `-t, --auth-token' or environment variable `SAMPQ_AUTH_TOKEN` was not specified!")
		os.Exit(1)
	}

	return cfg
}

// parse runs the flags parser over args and validates the result.
func parse(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.Query.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
