// Package stats implements the user-stats persistence collaborator of
// spec §6: getUser/createUser/updateStats/getLeaderboard. It is never on
// the per-tick path — cmd/server wires it to a mode.Policy death/kill
// callback that writes asynchronously, so persistence failure (spec §7) is
// logged and never surfaces to gameplay.
//
// Grounded on bormisov1-spaceship-online-game/server/database.go: a DB
// wrapping *sql.DB, PRAGMA journal_mode=WAL on open, migrate-on-open,
// row structs returned by value. When DATABASE_URL is unset, Open falls
// back to modernc.org/sqlite's file::memory:?cache=shared DSN instead of a
// second hand-rolled in-memory store, per spec §6's stated fallback.
package stats

import (
	"database/sql"
	"errors"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

var ErrUserNotFound = errors.New("stats: user not found")

// UserRow is one row of the users table.
type UserRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// StatsRow is one row of the per-user aggregate stats table.
type StatsRow struct {
	UserID int64
	Kills  int
	Deaths int
}

// Store persists user identities and their kill/death aggregates.
type Store struct {
	db  *sql.DB
	log *log.Logger
}

// Open opens (or creates) the backing database. An empty dsn uses an
// in-memory database shared across the process's connections, for the
// "DATABASE_URL unset" fallback case.
func Open(dsn string, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	s := &Store{db: conn, log: logger}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		user_id INTEGER PRIMARY KEY REFERENCES users(id),
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateUser inserts a new user with a zeroed stats row and returns its id.
func (s *Store) CreateUser(name string) (int64, error) {
	res, err := s.db.Exec("INSERT INTO users (name) VALUES (?)", name)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := s.db.Exec("INSERT INTO stats (user_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetUser looks up a user by id.
func (s *Store) GetUser(id int64) (UserRow, error) {
	row := s.db.QueryRow("SELECT id, name, created_at FROM users WHERE id = ?", id)
	var u UserRow
	if err := row.Scan(&u.ID, &u.Name, &u.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return UserRow{}, ErrUserNotFound
		}
		return UserRow{}, err
	}
	return u, nil
}

// UpdateStats adds deltaKills/deltaDeaths to a user's running totals.
func (s *Store) UpdateStats(userID int64, deltaKills, deltaDeaths int) error {
	_, err := s.db.Exec(
		"UPDATE stats SET kills = kills + ?, deaths = deaths + ? WHERE user_id = ?",
		deltaKills, deltaDeaths, userID,
	)
	return err
}

// GetLeaderboard returns the top `limit` users ordered by kills descending.
func (s *Store) GetLeaderboard(limit int) ([]StatsRow, error) {
	rows, err := s.db.Query(
		"SELECT user_id, kills, deaths FROM stats ORDER BY kills DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StatsRow
	for rows.Next() {
		var r StatsRow
		if err := rows.Scan(&r.UserID, &r.Kills, &r.Deaths); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordKill is the async callback cmd/server wires to the mode policy's
// kill/death notifications. Failures are logged and swallowed (spec §7
// "Persistence failure — logged, never surfaced to gameplay").
func (s *Store) RecordKill(killerUserID, victimUserID int64) {
	if err := s.UpdateStats(killerUserID, 1, 0); err != nil {
		s.log.Printf("stats: failed to record kill for user %d: %v", killerUserID, err)
	}
	if err := s.UpdateStats(victimUserID, 0, 1); err != nil {
		s.log.Printf("stats: failed to record death for user %d: %v", victimUserID, err)
	}
}
