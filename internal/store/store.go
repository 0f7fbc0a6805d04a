package store

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps the publication log and metric samples of a merger.
// SQLite in WAL mode lets history and export read while a run writes.
type Store struct {
	db *sql.DB
}

// pragma is one connection setting together with the value SQLite reports
// back once it is applied.
type pragma struct {
	name   string
	value  string
	readAs string
}

var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", readAs: "wal"},
	{name: "synchronous", value: "NORMAL", readAs: "1"},
	{name: "busy_timeout", value: "5000", readAs: "5000"},
	{name: "foreign_keys", value: "ON", readAs: "1"},
}

// migration upgrades a database whose user_version is below version.
type migration struct {
	version int
	name    string
	apply   func(*sql.DB) error
}

// migrations run in order. A database created from schema.sql already has
// every column, so each step must tolerate finding its change in place.
var migrations = []migration{
	{version: 1, name: "publications.engine_version", apply: addEngineVersion},
}

// schemaVersion is the user_version of a fully migrated database.
func schemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Open creates or opens the database at path, applies the connection
// pragmas and brings the schema up to date. Opening the same path again
// is harmless.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// the merger is the only writer; one connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		stmt := fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", stmt, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	for _, m := range migrations {
		if version >= m.version {
			continue
		}
		if err := m.apply(db); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion())); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// addEngineVersion adds the column recording which engine wrote a
// publication. Logs written before it existed read back an empty version.
func addEngineVersion(db *sql.DB) error {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('publications') WHERE name = 'engine_version'`,
	).Scan(&n)
	if err != nil || n > 0 {
		return err
	}
	_, err = db.Exec(`ALTER TABLE publications ADD COLUMN engine_version TEXT NOT NULL DEFAULT ''`)
	return err
}

// checkPragmas reports the first connection setting that did not take.
func (s *Store) checkPragmas() error {
	for _, p := range pragmas {
		var got string
		if err := s.db.QueryRow("PRAGMA " + p.name).Scan(&got); err != nil {
			return fmt.Errorf("query %s: %w", p.name, err)
		}
		if got != p.readAs {
			return fmt.Errorf("%s = %q, expected %q", p.name, got, p.readAs)
		}
	}
	return nil
}
