package types

import "errors"

// NoteRepository is the caller-facing API over both zones. It owns the
// subscription to the stores and publishes the derived note list of the
// active zone.
type NoteRepository interface {
	// CreateNote inserts a note into the active zone.
	CreateNote(title, body string) (int64, error)

	// UpdateNote rewrites oldNote with a new title, body and the current
	// local timestamp.
	UpdateNote(newTitle, newBody string, oldNote Note) error

	// DeleteNote removes note from the active zone.
	DeleteNote(note Note) error

	// GetNote returns a note of the active zone by id.
	GetNote(id int64) (Note, error)

	// SearchNotes filters the active zone by query and publishes the result.
	SearchNotes(query string) error

	// SortNotes persists option for the active zone and publishes the
	// reordered list.
	SortNotes(option SortOption) error

	// SortOption returns the persisted sort option of the active zone.
	SortOption() SortOption

	// ToggleZone makes zone active and publishes its notes.
	ToggleZone(zone Zone) error

	// Notes is the published note list of the active zone.
	Notes() Observable[[]Note]

	// CurrentZone is the published active zone.
	CurrentZone() Observable[Zone]

	// Close cancels the store subscriptions.
	Close() error
}

// Repository errors.
var (
	ErrUnknownZone       = errors.New("unknown zone")
	ErrInvalidSortOption = errors.New("invalid sort option")
	ErrRepositoryClosed  = errors.New("repository is closed")
)
