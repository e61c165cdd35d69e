// Package storage persists tracked game servers in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/woozymasta/sampq/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

const serverColumns = `
	address, port, hostname, gamemode, language, version, map_name, web_url,
	players, max_players, closed, queried, country_code, count, first_seen, last_seen`

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// UpsertServer inserts a server or refreshes the existing (address, port) row.
// Query fields are only overwritten when the new record was queried, so an
// announce without a successful query keeps the last known state.
func (r *Repository) UpsertServer(s models.Server) error {
	query := `
	INSERT INTO servers (` + serverColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	ON CONFLICT(address, port) DO UPDATE SET
		count = count + 1,
		last_seen = excluded.last_seen,

		country_code = CASE WHEN excluded.country_code != '' THEN excluded.country_code ELSE servers.country_code END,

		hostname    = CASE WHEN excluded.queried THEN excluded.hostname ELSE servers.hostname END,
		gamemode    = CASE WHEN excluded.queried THEN excluded.gamemode ELSE servers.gamemode END,
		language    = CASE WHEN excluded.queried THEN excluded.language ELSE servers.language END,
		version     = CASE WHEN excluded.queried THEN excluded.version ELSE servers.version END,
		map_name    = CASE WHEN excluded.queried THEN excluded.map_name ELSE servers.map_name END,
		web_url     = CASE WHEN excluded.queried THEN excluded.web_url ELSE servers.web_url END,
		players     = CASE WHEN excluded.queried THEN excluded.players ELSE servers.players END,
		max_players = CASE WHEN excluded.queried THEN excluded.max_players ELSE servers.max_players END,
		closed      = CASE WHEN excluded.queried THEN excluded.closed ELSE servers.closed END,
		queried     = CASE WHEN excluded.queried THEN 1 ELSE servers.queried END;
	`

	_, err := r.db.Exec(query,
		s.Address, s.Port, s.Hostname, s.GameMode, s.Language, s.Version, s.MapName, s.WebURL,
		s.Players, s.MaxPlayers, s.Closed, s.Queried, s.CountryCode,
		s.FirstSeen, s.LastSeen,
	)

	return err
}

// GetServers retrieves all servers, most recently seen first.
func (r *Repository) GetServers() ([]models.Server, error) {
	return r.queryServers(`SELECT ` + serverColumns + ` FROM servers ORDER BY last_seen DESC`)
}

// GetServer retrieves a server by address and port. It returns nil, nil when not found.
func (r *Repository) GetServer(address string, port int) (*models.Server, error) {
	row := r.db.QueryRow(`SELECT `+serverColumns+` FROM servers WHERE address = ? AND port = ?`, address, port)

	s, err := scanServer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// DeleteServer removes a server identified by address and port.
func (r *Repository) DeleteServer(address string, port int) error {
	_, err := r.db.Exec(`DELETE FROM servers WHERE address = ? AND port = ?`, address, port)
	return err
}

// DeleteEmptyServers removes servers that never answered a query.
func (r *Repository) DeleteEmptyServers() (int64, error) {
	res, err := r.db.Exec(`DELETE FROM servers WHERE queried = 0`)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// GetServersSubset retrieves servers for maintenance.
// If onlyEmpty is true, only servers without query data are returned.
func (r *Repository) GetServersSubset(onlyEmpty bool) ([]models.Server, error) {
	query := `SELECT ` + serverColumns + ` FROM servers`
	if onlyEmpty {
		query += ` WHERE queried = 0`
	}

	return r.queryServers(query)
}

func (r *Repository) queryServers(query string, args ...any) ([]models.Server, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var servers []models.Server
	for rows.Next() {
		s, err := scanServer(rows)
		if err != nil {
			return nil, err
		}
		servers = append(servers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return servers, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanServer(row scanner) (models.Server, error) {
	var s models.Server
	err := row.Scan(
		&s.Address, &s.Port, &s.Hostname, &s.GameMode, &s.Language, &s.Version, &s.MapName, &s.WebURL,
		&s.Players, &s.MaxPlayers, &s.Closed, &s.Queried, &s.CountryCode, &s.Count, &s.FirstSeen, &s.LastSeen,
	)

	return s, err
}
