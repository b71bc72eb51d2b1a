package types

import "errors"

// NoteStore provides CRUD and the fixed query shapes over one zone's table.
// All methods block until the underlying file I/O completes.
type NoteStore interface {
	// Insert stores a new note with the current timestamp and returns the
	// id assigned by the store.
	Insert(title, body string) (int64, error)

	// GetByID returns the note with the given id.
	// Returns ErrNotFound if no note has that id.
	GetByID(id int64) (Note, error)

	// GetAll returns every note ordered by sort.
	GetAll(sort SortOption) ([]Note, error)

	// Search returns the notes whose title or body contains query,
	// ignoring case, ordered by sort. An empty query returns every note.
	Search(query string, sort SortOption) ([]Note, error)

	// Update replaces title, body and timestamp of the row with note.ID and
	// returns the number of rows affected. Zero rows is not an error.
	Update(note Note) (int64, error)

	// Delete removes the row with note.ID and returns the number of rows
	// affected. Zero rows is not an error.
	Delete(note Note) (int64, error)

	// Subscribe registers a change handler and returns a function that
	// removes it.
	Subscribe(handler ChangeHandler) (cancel func())

	// Close releases the underlying storage file.
	Close() error
}

// Store errors.
var (
	ErrNotFound         = errors.New("note not found")
	ErrInvalidID        = errors.New("invalid note ID")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrStoreClosed      = errors.New("note store is closed")
	ErrMigration        = errors.New("schema migration failed")
)
