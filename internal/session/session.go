package session

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"photo-slideshow/internal/logging"
	"photo-slideshow/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Store persists per-viewer browsing sessions in SQLite. Values are opaque
// byte payloads; callers own the encoding.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the session database inside dir.
func New(ctx context.Context, dir string) (*Store, error) {
	dbPath := filepath.Join(dir, "sessions.db")

	// busy_timeout helps prevent "database is locked" errors
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close session database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to session database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close session database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize session schema: %w", err)
	}

	logging.Info("Session database initialized at %s", dbPath)
	return s, nil
}

func (s *Store) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expires_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`
	initCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	_, err := s.db.ExecContext(initCtx, schema)
	return err
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Get returns the payload for id. The second result is false when the
// session does not exist or has expired.
func (s *Store) Get(ctx context.Context, id string) ([]byte, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var data []byte
	err := s.db.QueryRowContext(opCtx,
		`SELECT data FROM sessions WHERE id = ? AND expires_at > ?`,
		id, time.Now().Unix(),
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading session %s: %w", id, err)
	}
	return data, true, nil
}

// Put stores (or replaces) the payload for id with the given lifetime.
func (s *Store) Put(ctx context.Context, id string, data []byte, ttl time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := s.db.ExecContext(opCtx,
		`INSERT INTO sessions (id, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		id, data, time.Now().Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving session %s: %w", id, err)
	}
	return nil
}

// Delete removes a session. Deleting a nonexistent session is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(opCtx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}

// Sweep removes expired sessions and refreshes the active-session gauge.
// Meant to run periodically from a ticker in main.
func (s *Store) Sweep(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().Unix()
	res, err := s.db.ExecContext(opCtx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return fmt.Errorf("sweeping sessions: %w", err)
	}
	if swept, err := res.RowsAffected(); err == nil && swept > 0 {
		metrics.SessionsSweptTotal.Add(float64(swept))
		logging.Debug("Swept %d expired sessions", swept)
	}

	var active int
	if err := s.db.QueryRowContext(opCtx,
		`SELECT COUNT(*) FROM sessions WHERE expires_at > ?`, now,
	).Scan(&active); err == nil {
		metrics.SessionsActive.Set(float64(active))
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
