// Package store persists fitted models in a local SQLite database. Models
// are flattened to their snapshot form and encoded with msgpack, so a
// reloaded model forecasts identically to the one that was saved.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"varcast/varmodel"
)

// ErrNotFound is returned when no stored model matches the lookup.
var ErrNotFound = errors.New("store: model not found")

const schema = `
CREATE TABLE IF NOT EXISTS models (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	k          INTEGER NOT NULL,
	p          INTEGER NOT NULL,
	n          INTEGER NOT NULL,
	payload    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_models_name ON models(name);
`

// timeLayout keeps fractional seconds fixed-width so that the stored
// timestamps order lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record describes one stored model without its payload.
type Record struct {
	ID        string
	Name      string
	CreatedAt time.Time
	K         int
	P         int
	N         int
}

// Store is a SQLite-backed model repository. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if necessary) the model store at path. The database
// runs in WAL mode with balanced durability settings.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if !strings.HasPrefix(path, "file:") {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("store: resolving path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("store: creating directory: %w", err)
		}
		path = abs
	}

	connStr := path +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: applying schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("model store opened")
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save persists the model under the given name and returns its new id.
// Names are not unique; saving twice under one name keeps both rows, and
// LoadByName returns the most recent.
func (s *Store) Save(m *varmodel.Model, name string) (string, error) {
	if name == "" {
		return "", errors.New("store: model name must not be empty")
	}
	snap := m.Snapshot()
	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("store: encoding model %q: %w", name, err)
	}

	id := uuid.NewString()
	_, err = s.db.Exec(
		`INSERT INTO models (id, name, created_at, k, p, n, payload) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, name, time.Now().UTC().Format(timeLayout), snap.K, snap.P, snap.N, payload,
	)
	if err != nil {
		return "", fmt.Errorf("store: saving model %q: %w", name, err)
	}

	s.log.Info().Str("id", id).Str("name", name).
		Int("k", snap.K).Int("p", snap.P).Int("n", snap.N).
		Msg("model saved")
	return id, nil
}

// Load reconstructs the model with the given id.
func (s *Store) Load(id string) (*varmodel.Model, error) {
	row := s.db.QueryRow(`SELECT payload FROM models WHERE id = ?`, id)
	return s.decodeRow(row, id)
}

// LoadByName reconstructs the most recently saved model with the given name.
func (s *Store) LoadByName(name string) (*varmodel.Model, error) {
	row := s.db.QueryRow(
		`SELECT payload FROM models WHERE name = ? ORDER BY created_at DESC LIMIT 1`, name)
	return s.decodeRow(row, name)
}

func (s *Store) decodeRow(row *sql.Row, key string) (*varmodel.Model, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("store: loading %s: %w", key, err)
	}
	var snap varmodel.Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("store: decoding %s: %w", key, err)
	}
	m, err := varmodel.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("store: reconstructing %s: %w", key, err)
	}
	return m, nil
}

// List returns metadata for every stored model, newest first.
func (s *Store) List() ([]Record, error) {
	rows, err := s.db.Query(
		`SELECT id, name, created_at, k, p, n FROM models ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: listing models: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var created string
		if err := rows.Scan(&r.ID, &r.Name, &created, &r.K, &r.P, &r.N); err != nil {
			return nil, fmt.Errorf("store: scanning record: %w", err)
		}
		r.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("store: parsing timestamp %q: %w", created, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Delete removes the model with the given id. Deleting a missing id is
// ErrNotFound.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM models WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: deleting %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.log.Info().Str("id", id).Msg("model deleted")
	return nil
}
