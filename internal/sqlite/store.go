// Package sqlite stores the notes of one zone in an SQLite file.
//
// A Store owns one database file, brings its schema to the expected version
// when opened, and publishes a change event after every mutation that
// touched a row. Timestamps are kept in UTC and handed to callers in local
// time.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/internal/notify"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Compile-time interface check: Store must implement NoteStore.
var _ types.NoteStore = (*Store)(nil)

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = FULL",
}

// Store is the record store of one zone.
type Store struct {
	mu      sync.RWMutex
	db      *sql.DB
	closed  bool
	path    string
	version int
	clock   datetime.Formatter
	logger  zerolog.Logger
	hub     *notify.Hub
}

// Open opens or creates the database at path and brings its schema to the
// expected version. A failed migration leaves the file as it was and
// returns an error wrapping types.ErrMigration.
func Open(path string, opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.source == "" {
		o.source = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	logger := o.logger.With().Str("component", "sqlite").Str("source", o.source).Logger()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	// One connection totally orders the operations on a file.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	sm := &schemaManager{db: db, version: o.version, mappings: o.mappings, logger: logger}
	version, err := sm.ensure()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("version", version).Msg("opened store")

	return &Store{
		db:      db,
		path:    path,
		version: version,
		clock:   o.clock,
		logger:  logger,
		hub:     notify.NewHub(o.source, o.logger),
	}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Version returns the schema version of the open file.
func (s *Store) Version() int { return s.version }

// Subscribe registers handler for change events.
func (s *Store) Subscribe(handler types.ChangeHandler) func() {
	return s.hub.Subscribe(handler)
}

// Close closes the database. Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Insert stores a note stamped with the current UTC time and returns its id.
func (s *Store) Insert(title, body string) (int64, error) {
	id, err := s.insert(title, body)
	if err != nil {
		return 0, err
	}
	s.hub.Publish(types.OpInsert, id)
	return id, nil
}

func (s *Store) insert(title, body string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrStoreClosed
	}

	res, err := s.db.Exec(
		"INSERT INTO note (note_title, note_body, timestamp) VALUES (?, ?, ?)",
		title, body, s.clock.CurrentUTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading note id: %w", err)
	}
	s.logger.Debug().Int64("note_id", id).Msg("inserted note")
	return id, nil
}

// GetByID returns the note with id, or types.ErrNotFound.
func (s *Store) GetByID(id int64) (types.Note, error) {
	if id <= 0 {
		return types.Note{}, types.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return types.Note{}, types.ErrStoreClosed
	}

	row := s.db.QueryRow(selectNotes+" WHERE id = ?", id)
	note, err := s.scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Note{}, types.ErrNotFound
		}
		return types.Note{}, fmt.Errorf("getting note %d: %w", id, err)
	}
	return note, nil
}

// GetAll returns every note ordered by option.
func (s *Store) GetAll(option types.SortOption) ([]types.Note, error) {
	return s.list("", option)
}

// Search returns the notes whose title or body contains query, ignoring
// ASCII case. An empty query returns every note.
func (s *Store) Search(query string, option types.SortOption) ([]types.Note, error) {
	return s.list(query, option)
}

func (s *Store) list(query string, option types.SortOption) ([]types.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}

	stmt, args := listQuery(query, option)
	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	notes := []types.Note{}
	for rows.Next() {
		note, err := s.scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// Update rewrites title, body and timestamp of the row with note.ID and
// returns the number of rows affected. note.Timestamp is local time; a
// value that does not parse is rejected with types.ErrInvalidTimestamp.
func (s *Store) Update(note types.Note) (int64, error) {
	n, err := s.update(note)
	if err != nil || n == 0 {
		return n, err
	}
	s.hub.Publish(types.OpUpdate, note.ID)
	return n, nil
}

func (s *Store) update(note types.Note) (int64, error) {
	t, err := s.clock.ParseLocal(note.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidTimestamp, note.Timestamp)
	}
	utc := t.UTC().Format(datetime.Layout)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrStoreClosed
	}

	res, err := s.db.Exec(
		"UPDATE note SET note_title = ?, note_body = ?, timestamp = ? WHERE id = ?",
		note.Title, note.Body, utc, note.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("updating note %d: %w", note.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("updating note %d: %w", note.ID, err)
	}
	s.logger.Debug().Int64("note_id", note.ID).Int64("rows", n).Msg("updated note")
	return n, nil
}

// Delete removes the row with note.ID and returns the number of rows
// affected.
func (s *Store) Delete(note types.Note) (int64, error) {
	n, err := s.delete(note.ID)
	if err != nil || n == 0 {
		return n, err
	}
	s.hub.Publish(types.OpDelete, note.ID)
	return n, nil
}

func (s *Store) delete(id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, types.ErrStoreClosed
	}

	res, err := s.db.Exec("DELETE FROM note WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("deleting note %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting note %d: %w", id, err)
	}
	s.logger.Debug().Int64("note_id", id).Int64("rows", n).Msg("deleted note")
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanNote reads one row into a Note. NULL text reads back empty and the
// timestamp is converted to local time.
func (s *Store) scanNote(row rowScanner) (types.Note, error) {
	var (
		note            types.Note
		title, body, ts sql.NullString
	)
	if err := row.Scan(&note.ID, &title, &body, &ts); err != nil {
		return types.Note{}, err
	}
	note.Title = title.String
	note.Body = body.String
	note.Timestamp = s.clock.UTCToLocal(ts.String)
	return note, nil
}
