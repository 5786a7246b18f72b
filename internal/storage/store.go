package storage

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "modernc.org/sqlite"
)

// Store persists content-addressed analysis results so identical images skip
// a paid model call. No report or session state is ever stored.
type Store interface {
	// GetAnalysisCache returns the cached analysis JSON for an image hash,
	// or nil, nil when no entry exists.
	GetAnalysisCache(imageHash string) ([]byte, error)
	// SetAnalysisCache stores analysis JSON under an image hash.
	SetAnalysisCache(imageHash string, analysis []byte) error
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the cache database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set file permissions (only works on creation)
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		// Ignore error if file doesn't exist yet
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS analysis_cache (
		image_hash TEXT PRIMARY KEY,
		analysis TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create analysis_cache table: %w", err)
	}
	return nil
}

// GetAnalysisCache retrieves a cached analysis by image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetAnalysisCache(imageHash string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var analysis string
	err := s.db.QueryRow(
		"SELECT analysis FROM analysis_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&analysis)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis cache: %w", err)
	}

	return []byte(analysis), nil
}

// SetAnalysisCache stores an analysis result in the cache.
func (s *SQLiteStore) SetAnalysisCache(imageHash string, analysis []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO analysis_cache (image_hash, analysis)
		VALUES (?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			analysis = excluded.analysis,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, string(analysis))

	if err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
