// Package store persists fetched object inventories and check-run history in
// a local SQLite database, so repeated checks don't refetch remote
// inventories inside the cache TTL.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"nitpick/internal/inventory"
)

// CacheStore wraps the SQLite cache database.
type CacheStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewCacheStore opens (creating if needed) the cache database at path.
func NewCacheStore(path string) (*CacheStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	store := &CacheStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// initialize creates the required tables.
func (s *CacheStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS inventories (
		source TEXT PRIMARY KEY,
		project TEXT,
		version TEXT,
		object_count INTEGER NOT NULL DEFAULT 0,
		fetched_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS objects (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		domain TEXT NOT NULL,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 1,
		location TEXT,
		disp_name TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_objects_lookup ON objects(domain, name);
	CREATE INDEX IF NOT EXISTS idx_objects_source ON objects(source);

	CREATE TABLE IF NOT EXISTS check_runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		refs_total INTEGER NOT NULL DEFAULT 0,
		unresolved INTEGER NOT NULL DEFAULT 0,
		suppressed INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// PutInventory replaces the cached copy of one inventory source.
func (s *CacheStore) PutInventory(inv *inventory.Inventory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM objects WHERE source = ?`, inv.Source); err != nil {
		return fmt.Errorf("failed to clear stale objects: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO objects (source, domain, role, name, priority, location, disp_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, obj := range inv.All() {
		if _, err := stmt.Exec(inv.Source, obj.Domain, obj.Role, obj.Name, obj.Priority, obj.Location, obj.DispName); err != nil {
			return fmt.Errorf("failed to insert object %s: %w", obj.Name, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO inventories (source, project, version, object_count, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source) DO UPDATE SET
			project = excluded.project,
			version = excluded.version,
			object_count = excluded.object_count,
			fetched_at = excluded.fetched_at`,
		inv.Source, inv.Project, inv.Version, inv.Len(), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record inventory: %w", err)
	}

	return tx.Commit()
}

// FetchedAt returns when the source was last cached, or false when it never
// was. Fresh is a convenience on top of it for TTL checks.
func (s *CacheStore) FetchedAt(source string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var fetched time.Time
	err := s.db.QueryRow(`SELECT fetched_at FROM inventories WHERE source = ?`, source).Scan(&fetched)
	if err != nil {
		return time.Time{}, false
	}
	return fetched, true
}

// Fresh reports whether the cached copy of source is younger than ttl.
func (s *CacheStore) Fresh(source string, ttl time.Duration) bool {
	fetched, ok := s.FetchedAt(source)
	return ok && time.Since(fetched) < ttl
}

// GetInventory reconstructs a cached inventory. Returns sql.ErrNoRows when
// the source was never cached.
func (s *CacheStore) GetInventory(source string) (*inventory.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var project, version string
	err := s.db.QueryRow(`SELECT project, version FROM inventories WHERE source = ?`, source).
		Scan(&project, &version)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT domain, role, name, priority, location, disp_name
		FROM objects WHERE source = ?`, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var objects []inventory.Object
	for rows.Next() {
		var obj inventory.Object
		if err := rows.Scan(&obj.Domain, &obj.Role, &obj.Name, &obj.Priority, &obj.Location, &obj.DispName); err != nil {
			return nil, fmt.Errorf("failed to scan object row: %w", err)
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return inventory.Rebuild(source, project, version, objects), nil
}

// Close closes the underlying database.
func (s *CacheStore) Close() error {
	return s.db.Close()
}
