package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

const maxTitleWidth = 40

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printNotes prints notes in a human-readable table.
func printNotes(w io.Writer, notes []types.Note, clock datetime.Formatter) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes found.")
		return
	}

	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tTITLE\tDATE")
	fmt.Fprintln(tw, "--\t-----\t----")
	for _, n := range notes {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", n.ID, truncate(firstLine(n.Title), maxTitleWidth), clock.MediumDate(n.Timestamp))
	}
	tw.Flush()

	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	fmt.Fprintf(w, "Total: %d note(s)\n", len(notes))
}

// printNote prints a single note with its body.
func printNote(w io.Writer, n types.Note) {
	fmt.Fprintf(w, "ID:    %d\n", n.ID)
	fmt.Fprintf(w, "Title: %s\n", n.Title)
	fmt.Fprintf(w, "Date:  %s\n", n.Timestamp)
	if n.Body != "" {
		fmt.Fprintf(w, "\n%s\n", n.Body)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
