package sqlite

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

func TestExportWritesStorageForm(t *testing.T) {
	s := setupStore(t)
	_, err := s.Insert("Buy milk", "2 liters")
	require.NoError(t, err)
	_, err = s.Insert("Call mom", "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first types.Note
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, types.Note{ID: 1, Title: "Buy milk", Body: "2 liters", Timestamp: "2024-01-02 10:00:00"}, first)
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupStore(t)
	for _, n := range []struct{ title, body string }{
		{"one", "first body"},
		{"two", "line\nbreak"},
		{"three", `quote " and \ slash`},
	} {
		_, err := src.Insert(n.title, n.body)
		require.NoError(t, err)
	}

	var buf bytes.Buffer
	require.NoError(t, src.Export(&buf))

	dst, err := Open(filepath.Join(t.TempDir(), "mysteries.db"), WithClock(src.clock))
	require.NoError(t, err)
	defer dst.Close()
	events := recordEvents(t, dst)

	n, err := dst.Import(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, *events, 3)

	want, err := src.GetAll(types.SortOldestFirst)
	require.NoError(t, err)
	got, err := dst.GetAll(types.SortOldestFirst)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Title, got[i].Title)
		assert.Equal(t, want[i].Body, got[i].Body)
		assert.Equal(t, want[i].Timestamp, got[i].Timestamp)
	}
}

func TestImportSkipsMalformedLines(t *testing.T) {
	s := setupStore(t)

	input := strings.Join([]string{
		`{"id":1,"title":"good","body":"b","timestamp":"2024-01-01 00:00:00"}`,
		`not json`,
		``,
		`{"id":2,"title":"bad time","body":"b","timestamp":"yesterday"}`,
		`{"id":3,"title":"also good","body":"","timestamp":"2024-01-02 00:00:00"}`,
	}, "\n")

	n, err := s.Import(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	notes, err := s.GetAll(types.SortOldestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"good", "also good"}, titles(notes))
}

func TestImportAssignsNewIDs(t *testing.T) {
	s := setupStore(t)
	_, err := s.Insert("existing", "")
	require.NoError(t, err)

	n, err := s.Import(strings.NewReader(`{"id":1,"title":"imported","body":"","timestamp":"2024-01-01 00:00:00"}`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	notes, err := s.GetAll(types.SortAZ)
	require.NoError(t, err)
	assert.Equal(t, []string{"existing", "imported"}, titles(notes))
	assert.ElementsMatch(t, []int64{1, 2}, ids(notes))
}

func TestExportFile(t *testing.T) {
	s := setupStore(t)
	_, err := s.Insert("a", "b")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))
	require.NoError(t, s.ExportFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), `"title":"a"`)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp file is left behind")

	other := setupStore(t)
	n, err := other.ImportFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImportFileMissing(t *testing.T) {
	s := setupStore(t)
	_, err := s.ImportFile(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestDecodeNotes(t *testing.T) {
	s := setupStore(t)
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"two notes", "{\"title\":\"a\",\"timestamp\":\"2024-01-01 00:00:00\"}\n" +
			"{\"title\":\"b\",\"timestamp\":\"2024-01-01 00:00:01\"}\n", []string{"a", "b"}},
		{"padded and crlf lines", "  {\"title\":\"a\",\"timestamp\":\"2024-01-01 00:00:00\"}\r\n\r\n", []string{"a"}},
		{"not an object", "[1,2]\n\"text\"\n", nil},
		{"timestamp missing", "{\"title\":\"a\"}\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := s.decodeNotes(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, nilIfEmpty(titles(notes)))
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestReplaceFileKeepsOriginalOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("original\n"), 0o644))

	err := replaceFile(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return errors.New("encoder gave up")
	})
	assert.ErrorContains(t, err, "encoder gave up")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file is removed")
}

func TestReplaceFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.jsonl")
	require.NoError(t, replaceFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "{}\n")
		return err
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}
