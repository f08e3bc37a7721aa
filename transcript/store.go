// Package transcript persists completed chat exchanges in a local SQLite
// database so conversations survive across CLI sessions. The wrapper API
// itself keeps no client-side state; this store is the CLI's own record.
package transcript

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Exchange is one completed prompt/reply round trip, successful or not.
type Exchange struct {
	ID         string
	CreatedAt  time.Time
	ProjectID  string
	ProjectURL string
	Prompt     string
	Response   string
	Success    bool
	Error      string
	Duration   time.Duration
}

// Store manages the SQLite database for exchanges
type Store struct {
	db *sql.DB
}

// NewStore creates a new transcript store
func NewStore(dbPath string) (*Store, error) {
	// Ensure directory exists
	if err := ensureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the database schema
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		project_id TEXT,
		project_url TEXT,
		prompt TEXT NOT NULL,
		response TEXT,
		success INTEGER NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at);
	CREATE INDEX IF NOT EXISTS idx_exchanges_project ON exchanges(project_id);
	CREATE INDEX IF NOT EXISTS idx_exchanges_success ON exchanges(success);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveExchange records one exchange. A zero CreatedAt is stamped with the
// current time.
func (s *Store) SaveExchange(ex Exchange) error {
	if ex.ID == "" {
		return fmt.Errorf("exchange id is required")
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO exchanges (id, created_at, project_id, project_url, prompt, response, success, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ex.ID, ex.CreatedAt, ex.ProjectID, ex.ProjectURL, ex.Prompt, ex.Response, ex.Success, ex.Error, ex.Duration.Milliseconds())

	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// GetExchange retrieves an exchange by ID
func (s *Store) GetExchange(id string) (*Exchange, error) {
	row := s.db.QueryRow(`
		SELECT id, created_at, project_id, project_url, prompt, response, success, error, duration_ms
		FROM exchanges WHERE id = ?
	`, id)

	ex, err := scanExchange(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("exchange not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange: %w", err)
	}
	return ex, nil
}

// Recent returns the most recent exchanges, newest first
func (s *Store) Recent(limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, created_at, project_id, project_url, prompt, response, success, error, duration_ms
		FROM exchanges ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	return collectExchanges(rows)
}

// Search returns exchanges whose prompt or response contains term, newest first
func (s *Store) Search(term string, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = 10
	}

	pattern := "%" + term + "%"
	rows, err := s.db.Query(`
		SELECT id, created_at, project_id, project_url, prompt, response, success, error, duration_ms
		FROM exchanges WHERE prompt LIKE ? OR response LIKE ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, pattern, pattern, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to search exchanges: %w", err)
	}
	defer rows.Close()

	return collectExchanges(rows)
}

// CountExchanges returns the total number of stored exchanges
func (s *Store) CountExchanges() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM exchanges`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count exchanges: %w", err)
	}
	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner) (*Exchange, error) {
	var ex Exchange
	var durationMS int64

	if err := row.Scan(&ex.ID, &ex.CreatedAt, &ex.ProjectID, &ex.ProjectURL,
		&ex.Prompt, &ex.Response, &ex.Success, &ex.Error, &durationMS); err != nil {
		return nil, err
	}

	ex.Duration = time.Duration(durationMS) * time.Millisecond
	return &ex, nil
}

func collectExchanges(rows *sql.Rows) ([]Exchange, error) {
	var exchanges []Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, *ex)
	}
	return exchanges, rows.Err()
}

// Helper function to ensure directory exists
func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}
