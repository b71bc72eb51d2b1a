package sqlite

import (
	"strings"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Order clauses per sort option. Every clause ends on id so that equal keys
// still come back in a fixed order, and Z_A is the exact reverse of A_Z.
const (
	orderAZ     = "note_title COLLATE NOCASE ASC, note_body COLLATE NOCASE ASC, id ASC"
	orderZA     = "note_title COLLATE NOCASE DESC, note_body COLLATE NOCASE DESC, id DESC"
	orderOldest = "timestamp ASC, id ASC"
	orderNewest = "timestamp DESC, id DESC"
)

const selectNotes = "SELECT id, note_title, note_body, timestamp FROM note"

// OrderBy returns the ORDER BY clause, without the keywords, for option.
// Unrecognized options order newest first.
func OrderBy(option types.SortOption) string {
	switch option {
	case types.SortAZ:
		return orderAZ
	case types.SortZA:
		return orderZA
	case types.SortOldestFirst:
		return orderOldest
	default:
		return orderNewest
	}
}

// SearchPredicate returns a WHERE predicate matching notes whose title or
// body contains query, and its arguments. LIKE folds ASCII case only.
func SearchPredicate(query string) (string, []any) {
	pattern := "%" + EscapeLike(query) + "%"
	return `note_title LIKE ? ESCAPE '\' OR note_body LIKE ? ESCAPE '\'`, []any{pattern, pattern}
}

// EscapeLike escapes the LIKE wildcards in s so they match literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// listQuery builds the statement GetAll and Search run.
func listQuery(query string, option types.SortOption) (string, []any) {
	var b strings.Builder
	b.WriteString(selectNotes)

	var args []any
	if query != "" {
		pred, predArgs := SearchPredicate(query)
		b.WriteString(" WHERE ")
		b.WriteString(pred)
		args = predArgs
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(OrderBy(option))
	return b.String(), args
}
