package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// seedFile creates a database file by running stmts and returns its path.
func seedFile(t *testing.T, stmts ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zone.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

// inspect opens path directly and returns its user_version and table names.
func inspect(t *testing.T, path string) (int, []string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	v, err := userVersion(db)
	require.NoError(t, err)

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	require.NoError(t, err)
	defer rows.Close()
	var tables []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		tables = append(tables, name)
	}
	require.NoError(t, rows.Err())
	return v, tables
}

func columnNames(t *testing.T, s *Store) []string {
	t.Helper()
	tx, err := s.db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()
	cols, err := tableColumns(tx, tableNote)
	require.NoError(t, err)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}

func TestMigrateLegacyVocabulary(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE Notes (ID INTEGER PRIMARY KEY AUTOINCREMENT, NoteTitle TEXT, NoteBody TEXT, Timestamp TEXT)`,
		`INSERT INTO Notes (ID, NoteTitle, NoteBody, Timestamp) VALUES (3, 'Buy milk', '2 liters', '2023-05-01 08:00:00')`,
		`INSERT INTO Notes (ID, NoteTitle, NoteBody, Timestamp) VALUES (7, 'Call mom', NULL, '2023-05-02 09:15:00')`,
		`PRAGMA user_version = 3`,
	)

	s, err := Open(path, WithClock(steppingClock(epoch)))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, SchemaVersion, s.Version())
	assert.Equal(t, []string{colID, colTitle, colBody, colTimestamp}, columnNames(t, s))

	notes, err := s.GetAll(types.SortOldestFirst)
	require.NoError(t, err)
	assert.Equal(t, []types.Note{
		{ID: 3, Title: "Buy milk", Body: "2 liters", Timestamp: "2023-05-01 10:00:00"},
		{ID: 7, Title: "Call mom", Body: "", Timestamp: "2023-05-02 11:15:00"},
	}, notes)

	id, err := s.Insert("after", "")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id, "ids continue after the migrated rows")

	require.NoError(t, s.Close())
	v, tables := inspect(t, path)
	assert.Equal(t, SchemaVersion, v)
	assert.Equal(t, []string{tableNote}, tables)
}

func TestMigrateDropsUnknownColumns(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE note (id INTEGER PRIMARY KEY, note_title TEXT, note_body TEXT, color TEXT, timestamp TEXT NOT NULL)`,
		`INSERT INTO note VALUES (1, 't', 'b', 'red', '2024-01-01 00:00:00')`,
		`PRAGMA user_version = 1`,
	)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{colID, colTitle, colBody, colTimestamp}, columnNames(t, s))
	got, err := s.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "b", got.Body)
}

func TestMigrateMissingColumnReadsEmpty(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE note (id INTEGER PRIMARY KEY, note_title TEXT, timestamp TEXT)`,
		`INSERT INTO note VALUES (1, 'title only', NULL)`,
		`PRAGMA user_version = 1`,
	)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "title only", got.Title)
	assert.Equal(t, "", got.Body)
	assert.NotEmpty(t, got.Timestamp)
	assert.NotContains(t, got.Timestamp, "Error", "a NULL timestamp takes the column default")
}

func TestMigrateCustomMappings(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE note (id INTEGER PRIMARY KEY, headline TEXT, text TEXT, timestamp TEXT)`,
		`INSERT INTO note VALUES (1, 'h', 'x', '2024-01-01 00:00:00')`,
		`PRAGMA user_version = 1`,
	)

	s, err := Open(path, WithColumnMappings(
		types.ColumnMapping{Old: "headline", New: colTitle},
		types.ColumnMapping{Old: "text", New: colBody},
	))
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "h", got.Title)
	assert.Equal(t, "x", got.Body)
}

func TestMigrateFailureLeavesFileUnchanged(t *testing.T) {
	// Duplicate ids cannot fit the new primary key, so the copy fails.
	path := seedFile(t,
		`CREATE TABLE Notes (ID INTEGER, NoteTitle TEXT, NoteBody TEXT, Timestamp TEXT)`,
		`INSERT INTO Notes VALUES (1, 'a', 'a', '2024-01-01 00:00:00')`,
		`INSERT INTO Notes VALUES (1, 'b', 'b', '2024-01-01 00:00:00')`,
		`PRAGMA user_version = 3`,
	)

	_, err := Open(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMigration)

	v, tables := inspect(t, path)
	assert.Equal(t, 3, v)
	assert.Equal(t, []string{"Notes"}, tables)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM Notes").Scan(&n))
	assert.Equal(t, 2, n)
}

func TestMigrateRecoversLeftoverTempTable(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE note_temp (ID INTEGER PRIMARY KEY, NoteTitle TEXT, NoteBody TEXT, Timestamp TEXT)`,
		`INSERT INTO note_temp VALUES (1, 'one', '', '2024-01-01 00:00:00')`,
		`INSERT INTO note_temp VALUES (2, 'two', '', '2024-01-01 00:01:00')`,
		`CREATE TABLE note (id INTEGER PRIMARY KEY, note_title TEXT, note_body TEXT, timestamp TEXT)`,
		`INSERT INTO note VALUES (1, 'one', '', '2024-01-01 00:00:00')`,
		`PRAGMA user_version = 3`,
	)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	notes, err := s.GetAll(types.SortOldestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, titles(notes))

	require.NoError(t, s.Close())
	_, tables := inspect(t, path)
	assert.Equal(t, []string{tableNote}, tables)
}

func TestMigrateKeepsTimestampIndex(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE note (id INTEGER PRIMARY KEY AUTOINCREMENT, note_title TEXT, note_body TEXT, timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
		`CREATE INDEX idx_note_timestamp ON note(timestamp)`,
		`INSERT INTO note (note_title, note_body, timestamp) VALUES ('kept', '', '2024-01-01 00:00:00')`,
		`PRAGMA user_version = 1`,
	)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?",
		tableNote, idxNoteTimestampName,
	).Scan(&n))
	assert.Equal(t, 1, n)

	notes, err := s.GetAll(types.SortAZ)
	require.NoError(t, err)
	assert.Equal(t, []string{"kept"}, titles(notes))
}

func TestMigrateDowngradeTakesSamePath(t *testing.T) {
	path := seedFile(t,
		`CREATE TABLE note (id INTEGER PRIMARY KEY, note_title TEXT, note_body TEXT, timestamp TEXT NOT NULL, archived INTEGER)`,
		`INSERT INTO note VALUES (5, 'from the future', 'b', '2024-01-01 00:00:00', 1)`,
		`PRAGMA user_version = 9`,
	)

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, SchemaVersion, s.Version())
	got, err := s.GetByID(5)
	require.NoError(t, err)
	assert.Equal(t, "from the future", got.Title)
}

func TestMigrateToCustomVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.db")

	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.Insert("a", "b")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, WithSchemaVersion(3))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 3, s.Version())
	notes, err := s.GetAll(types.SortAZ)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, titles(notes))
}

func TestPlanCopy(t *testing.T) {
	current := []column{
		{name: colID, notNull: false},
		{name: colTitle},
		{name: colBody},
		{name: colTimestamp, notNull: true, defaultValue: sql.NullString{String: "CURRENT_TIMESTAMP", Valid: true}},
	}

	tests := []struct {
		name        string
		old         []string
		mappings    []types.ColumnMapping
		wantDst     []string
		wantSrc     []string
		wantDropped []string
	}{
		{
			name:    "same layout",
			old:     []string{"id", "note_title", "note_body", "timestamp"},
			wantDst: []string{`"id"`, `"note_title"`, `"note_body"`, `"timestamp"`},
			wantSrc: []string{`"id"`, `"note_title"`, `"note_body"`, `COALESCE("timestamp", CURRENT_TIMESTAMP)`},
		},
		{
			name:     "legacy names matched by case and mapping",
			old:      []string{"ID", "NoteTitle", "NoteBody", "Timestamp"},
			mappings: DefaultColumnMappings,
			wantDst:  []string{`"id"`, `"timestamp"`, `"note_title"`, `"note_body"`},
			wantSrc:  []string{`"ID"`, `COALESCE("Timestamp", CURRENT_TIMESTAMP)`, `"NoteTitle"`, `"NoteBody"`},
		},
		{
			name:        "common column wins over mapping",
			old:         []string{"id", "note_title", "NoteTitle"},
			mappings:    DefaultColumnMappings,
			wantDst:     []string{`"id"`, `"note_title"`},
			wantSrc:     []string{`"id"`, `"note_title"`},
			wantDropped: []string{"NoteTitle"},
		},
		{
			name:        "mapping to unknown column is ignored",
			old:         []string{"id", "subject"},
			mappings:    []types.ColumnMapping{{Old: "subject", New: "headline"}},
			wantDst:     []string{`"id"`},
			wantSrc:     []string{`"id"`},
			wantDropped: []string{"subject"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := make([]column, len(tt.old))
			for i, name := range tt.old {
				old[i] = column{name: name}
			}
			plan := planCopy(old, current, tt.mappings)
			assert.Equal(t, tt.wantDst, plan.dst)
			assert.Equal(t, tt.wantSrc, plan.src)
			assert.Equal(t, tt.wantDropped, plan.dropped)
		})
	}
}
