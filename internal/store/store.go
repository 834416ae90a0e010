package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store adapts a SQLite database into a set of logical key-value tables, each
// addressed by (table, partition key, sort key). It is the only layer that
// touches the database; repositories build entity semantics on top of it.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the backing database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "agente.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw database handle for maintenance queries and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// Get returns the record stored under (table, pk, sk). Tables whose records
// have no sort key use an empty sk.
func (s *Store) Get(table, pk, sk string) (Record, error) {
	var r Record
	var payload string
	var createdAt string
	err := s.db.QueryRow(`
		SELECT payload, created_at FROM records
		WHERE tbl = ? AND pk = ? AND sk = ?`, table, pk, sk,
	).Scan(&payload, &createdAt)
	if err == sql.ErrNoRows {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("getting record %s/%s/%s: %w", table, pk, sk, err)
	}

	r.Table = table
	r.PartitionKey = pk
	r.SortKey = sk
	r.Payload = json.RawMessage(payload)
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return Record{}, fmt.Errorf("parsing created_at: %w", err)
	}
	return r, nil
}

// QueryByOwner returns the records of one partition, ordered by sort key.
func (s *Store) QueryByOwner(table, pk string, opts QueryOptions) ([]Record, error) {
	query := `SELECT sk, payload, created_at FROM records WHERE tbl = ? AND pk = ?`
	args := []any{table, pk}

	if opts.SortKeyFrom != "" {
		query += ` AND sk >= ?`
		args = append(args, opts.SortKeyFrom)
	}
	if opts.SortKeyTo != "" {
		query += ` AND sk <= ?`
		args = append(args, opts.SortKeyTo)
	}

	if opts.Descending {
		query += ` ORDER BY sk DESC`
	} else {
		query += ` ORDER BY sk ASC`
	}

	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying %s/%s: %w", table, pk, err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		r := Record{Table: table, PartitionKey: pk}
		var payload, createdAt string
		if err := rows.Scan(&r.SortKey, &payload, &createdAt); err != nil {
			return nil, err
		}
		r.Payload = json.RawMessage(payload)
		if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Put inserts or replaces a record.
func (s *Store) Put(r Record) error {
	if !json.Valid(r.Payload) {
		return fmt.Errorf("putting record %s/%s/%s: payload is not valid JSON", r.Table, r.PartitionKey, r.SortKey)
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO records (tbl, pk, sk, payload, created_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(tbl, pk, sk) DO UPDATE SET payload = excluded.payload`,
		r.Table, r.PartitionKey, r.SortKey, string(r.Payload), createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("putting record %s/%s/%s: %w", r.Table, r.PartitionKey, r.SortKey, err)
	}
	return nil
}

// Delete removes a record. Deleting an absent record returns ErrNotFound.
func (s *Store) Delete(table, pk, sk string) error {
	res, err := s.db.Exec(`DELETE FROM records WHERE tbl = ? AND pk = ? AND sk = ?`, table, pk, sk)
	if err != nil {
		return fmt.Errorf("deleting record %s/%s/%s: %w", table, pk, sk, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Owners returns the distinct partition keys present in a table.
func (s *Store) Owners(table string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT pk FROM records WHERE tbl = ? ORDER BY pk`, table)
	if err != nil {
		return nil, fmt.Errorf("listing owners of %s: %w", table, err)
	}
	defer rows.Close()

	var owners []string
	for rows.Next() {
		var pk string
		if err := rows.Scan(&pk); err != nil {
			return nil, err
		}
		owners = append(owners, pk)
	}
	return owners, rows.Err()
}

// AppliedMigrations returns the applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
