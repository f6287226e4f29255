// Package cache stores compiled programs in SQLite, keyed by the content
// hash of the checked translation unit.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/rsc/compiler"
	"github.com/chazu/rsc/compiler/hash"
	"github.com/chazu/rsc/vm"
)

var log = commonlog.GetLogger("rsc.cache")

// ErrNotFound indicates no program is stored under the requested key.
var ErrNotFound = errors.New("program not found")

// Store handles SQLite storage for compiled programs.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the cache database at path. The special
// path ":memory:" gives a private in-memory cache.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating cache dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// An in-memory database lives as long as its one connection.
	db.SetMaxOpenConns(1)

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS programs (
		key        TEXT PRIMARY KEY,
		program    BLOB NOT NULL,
		procs      INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Key returns the cache key of a checked unit.
func Key(unit *compiler.Unit) string {
	return hash.Hex(hash.HashUnit(unit))
}

// Put stores prog under key, replacing any previous entry.
func (s *Store) Put(key string, prog *vm.Program) error {
	data, err := vm.MarshalProgram(prog)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO programs (key, program, procs, created_at) VALUES (?, ?, ?, ?)",
		key, data, len(prog.Procs), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	return nil
}

// Get loads the program stored under key.
func (s *Store) Get(key string) (*vm.Program, error) {
	var data []byte
	err := s.db.QueryRow("SELECT program FROM programs WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying program: %w", err)
	}

	prog, err := vm.UnmarshalProgram(data)
	if err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", key, err)
	}
	return prog, nil
}

// Len returns the number of stored programs.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM programs").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Prune deletes every entry except the newest keep.
func (s *Store) Prune(keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM programs WHERE key NOT IN (
		SELECT key FROM programs ORDER BY created_at DESC, key LIMIT ?
	)`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	return res.RowsAffected()
}

// Compile checks files and returns the cached program for the resulting
// unit, generating and storing it on a miss. Compile errors are never
// cached.
func (s *Store) Compile(files []compiler.SourceFile) (*vm.Program, error) {
	unit, err := compiler.Check(files)
	if err != nil {
		return nil, err
	}
	key := Key(unit)

	prog, err := s.Get(key)
	switch {
	case err == nil:
		log.Debugf("cache hit %s", key[:12])
		return prog, nil
	case !errors.Is(err, ErrNotFound):
		// A corrupt entry is rebuilt rather than failing the compile.
		log.Warningf("cache entry %s unreadable: %s", key[:12], err)
	}

	log.Debugf("cache miss %s", key[:12])
	prog = compiler.Generate(unit)
	if err := s.Put(key, prog); err != nil {
		return nil, err
	}
	return prog, nil
}
