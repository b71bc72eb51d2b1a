package sqlite

import (
	"bufio"
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// maxLineSize bounds one exported note.
const maxLineSize = 16 << 20

// Export writes every note as one JSON object per line, in id order.
// Timestamps are written in their UTC storage form.
func (s *Store) Export(w io.Writer) error {
	notes, err := s.exportNotes()
	if err != nil {
		return err
	}
	return encodeNotes(w, notes)
}

// ExportFile writes the export to path. The file is replaced only once the
// whole export is on disk.
func (s *Store) ExportFile(path string) error {
	notes, err := s.exportNotes()
	if err != nil {
		return err
	}
	return replaceFile(path, func(w io.Writer) error {
		return encodeNotes(w, notes)
	})
}

// exportNotes reads every note in storage form.
func (s *Store) exportNotes() ([]types.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}

	rows, err := s.db.Query(selectNotes + " ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var notes []types.Note
	for rows.Next() {
		var note types.Note
		var title, body, ts sql.NullString
		if err := rows.Scan(&note.ID, &title, &body, &ts); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		note.Title, note.Body, note.Timestamp = title.String, body.String, ts.String
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}
	return notes, nil
}

// Import inserts the notes read from r in one transaction and returns how
// many were stored. Imported notes get new ids. Lines that are not a JSON
// note, or whose timestamp is not in storage form, are skipped. One insert
// event is published per stored note once the transaction commits.
func (s *Store) Import(r io.Reader) (int, error) {
	notes, err := s.decodeNotes(r)
	if err != nil {
		return 0, err
	}

	ids, err := s.importNotes(notes)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.hub.Publish(types.OpInsert, id)
	}
	return len(ids), nil
}

// ImportFile imports the JSONL file at path.
func (s *Store) ImportFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return s.Import(f)
}

func (s *Store) importNotes(notes []types.Note) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, types.ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO note (note_title, note_body, timestamp) VALUES (?, ?, ?)")
	if err != nil {
		return nil, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(notes))
	for _, note := range notes {
		res, err := stmt.Exec(note.Title, note.Body, note.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("inserting imported note: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("reading note id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	s.logger.Info().Int("imported", len(ids)).Msg("imported notes")
	return ids, nil
}

// decodeNotes reads one note per line. Blank lines are ignored; lines that do
// not hold a note with a storage-form timestamp are logged and skipped.
func (s *Store) decodeNotes(r io.Reader) ([]types.Note, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var notes []types.Note
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var note types.Note
		if err := json.Unmarshal(raw, &note); err != nil {
			s.logger.Warn().Int("line", line).Err(err).Msg("skipping malformed line")
			continue
		}
		if _, err := time.Parse(datetime.Layout, note.Timestamp); err != nil {
			s.logger.Warn().Int("line", line).Str("timestamp", note.Timestamp).Msg("skipping note with bad timestamp")
			continue
		}
		notes = append(notes, note)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading line %d: %w", line+1, err)
	}
	return notes, nil
}

// encodeNotes writes notes as JSON Lines.
func encodeNotes(w io.Writer, notes []types.Note) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, note := range notes {
		if err := enc.Encode(note); err != nil {
			return fmt.Errorf("encoding note %d: %w", note.ID, err)
		}
	}
	return bw.Flush()
}

// replaceFile writes path through fill into a temporary file in the same
// directory, syncs it and renames it over path. On any failure path is left
// untouched and the temporary file is removed.
func replaceFile(path string, fill func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	closed := false
	defer func() {
		if err == nil {
			return
		}
		if !closed {
			err = errors.Join(err, tmp.Close())
		}
		os.Remove(tmp.Name())
	}()

	if err = fill(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("setting mode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("syncing %s: %w", tmp.Name(), err)
	}
	closed = true
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
