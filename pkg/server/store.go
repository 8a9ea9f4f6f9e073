package server

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// SessionRecord is the persisted summary of one upload. The full session
// payload is stored as JSON so old records survive schema evolution.
type SessionRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	FeatureCount int       `json:"feature_count"`
	RuleCount    int       `json:"rule_count"`
	MWPCount     int       `json:"mwp_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store keeps a history of uploaded sessions in sqlite. Only server-side
// artifacts go here; client selections and translations are never
// persisted.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the session database at dbPath.
func OpenStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// OpenMemoryStore opens a throwaway in-memory store, used when no db
// path is configured and in tests.
func OpenMemoryStore() (*Store, error) {
	return OpenStore(":memory:")
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		feature_count INTEGER NOT NULL,
		rule_count INTEGER NOT NULL,
		mwp_count INTEGER NOT NULL,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSession inserts a session record with its JSON payload.
func (s *Store) SaveSession(rec SessionRecord, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode session payload: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO sessions (id, filename, feature_count, rule_count, mwp_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Filename, rec.FeatureCount, rec.RuleCount, rec.MWPCount, string(data), rec.CreatedAt)
	return err
}

// ListSessions returns the most recent session records, newest first.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, filename, feature_count, rule_count, mwp_count, created_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []SessionRecord
	for rows.Next() {
		var r SessionRecord
		if err := rows.Scan(&r.ID, &r.Filename, &r.FeatureCount, &r.RuleCount, &r.MWPCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// SessionPayload returns the raw JSON payload for a session ID.
func (s *Store) SessionPayload(id string) ([]byte, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM sessions WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}
