package client

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"joddit/internal/domain/note"
)

// LocalStore is the authoritative on-device copy of the notebook. The
// whole collection is read and written as one unit so a reconcile run
// always sees a consistent snapshot.
type LocalStore interface {
	ReadAll() []note.Note
	WriteAll(notes []note.Note) error
}

const notesKey = "notes"

type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteStore(path string, log *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db, log: log}

	if err := store.initTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
	`)

	return err
}

// ReadAll loads the stored collection. A missing slot or corrupt payload
// yields an empty collection rather than an error: the device must stay
// usable even when local state is damaged.
func (s *SQLiteStore) ReadAll() []note.Note {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", notesKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		s.log.Warn("read local notes failed", "error", err)
		return nil
	}

	var notes []note.Note
	if err := json.Unmarshal(value, &notes); err != nil {
		s.log.Warn("local notes payload is corrupt", "error", err)
		return nil
	}

	return notes
}

func (s *SQLiteStore) WriteAll(notes []note.Note) error {
	if notes == nil {
		notes = []note.Note{}
	}

	value, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, notesKey, value)
	if err != nil {
		return fmt.Errorf("write notes: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is the fallback when SQLite cannot be opened, and doubles
// as the store used in tests.
type MemoryStore struct {
	mu    sync.Mutex
	notes []note.Note
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) ReadAll() []note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]note.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

func (s *MemoryStore) WriteAll(notes []note.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = make([]note.Note, len(notes))
	for i, n := range notes {
		s.notes[i] = n.Clone()
	}
	return nil
}
