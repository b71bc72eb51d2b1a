package types

import "fmt"

// SortOption is a named ordering of a note list. The name is what gets
// persisted in preferences.
type SortOption string

// Supported sort options.
const (
	SortAZ          SortOption = "A_Z"
	SortZA          SortOption = "Z_A"
	SortOldestFirst SortOption = "OLDEST_FIRST"
	SortNewestFirst SortOption = "NEWEST_FIRST"
)

// DefaultSortOption applies when nothing has been persisted for a zone.
const DefaultSortOption = SortNewestFirst

// SortOptions lists the options in selector id order.
var SortOptions = []SortOption{SortAZ, SortZA, SortOldestFirst, SortNewestFirst}

// Valid reports whether s is one of the declared options.
func (s SortOption) Valid() bool {
	for _, o := range SortOptions {
		if o == s {
			return true
		}
	}
	return false
}

// ID returns the selector id of s, or -1 for an unrecognized option.
func (s SortOption) ID() int {
	for i, o := range SortOptions {
		if o == s {
			return i
		}
	}
	return -1
}

// SortOptionFromID maps a selector id to its option. An unrecognized id
// yields no selection; the caller decides what to do with it.
func SortOptionFromID(id int) (SortOption, bool) {
	if id < 0 || id >= len(SortOptions) {
		return "", false
	}
	return SortOptions[id], true
}

// ParseSortOption accepts an option name (A_Z, Z_A, OLDEST_FIRST,
// NEWEST_FIRST) and returns ErrInvalidSortOption for anything else.
func ParseSortOption(name string) (SortOption, error) {
	s := SortOption(name)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSortOption, name)
	}
	return s, nil
}

// SortOptionOrDefault returns the option named by name, falling back to
// DefaultSortOption for empty or unrecognized values.
func SortOptionOrDefault(name string) SortOption {
	s := SortOption(name)
	if s.Valid() {
		return s
	}
	return DefaultSortOption
}
