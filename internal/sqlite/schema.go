package sqlite

import (
	"strings"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// SchemaVersion is the version recorded in PRAGMA user_version once the
// note table has the current layout.
const SchemaVersion = 2

// Table and column names of the current layout.
const (
	tableNote = "note"
	tableTemp = "note_temp"

	colID        = "id"
	colTitle     = "note_title"
	colBody      = "note_body"
	colTimestamp = "timestamp"
)

// Schema DDL for the current layout.
const (
	createNote = `CREATE TABLE note (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    note_title TEXT,
    note_body TEXT,
    timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

	idxNoteTimestampName = "idx_note_timestamp"
	idxNoteTimestamp     = `CREATE INDEX idx_note_timestamp ON note(timestamp);`
)

// schemaDDL lists the statements createSchema runs, in order.
var schemaDDL = []string{
	createNote,
	idxNoteTimestamp,
}

// legacyTables are table names used by earlier layouts. The version 3
// vocabulary stored notes in Notes(ID, NoteTitle, NoteBody, Timestamp).
var legacyTables = []string{"Notes"}

// DefaultColumnMappings pairs legacy column names with their current
// replacements.
var DefaultColumnMappings = []types.ColumnMapping{
	{Old: "NoteTitle", New: colTitle},
	{Old: "NoteBody", New: colBody},
	{Old: "noteTitle", New: colTitle},
	{Old: "noteBody", New: colBody},
}

// quoteIdent quotes an SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
