// Package datetime converts note timestamps between the UTC form kept in
// storage and the local form handed to callers.
//
// Every timestamp uses Layout at one-second granularity. Conversions never
// return an error: a value that cannot be parsed comes back as
// ErrorPrefix followed by the original input.
package datetime

import (
	"strings"
	"time"
)

// Layouts.
const (
	// Layout is the canonical storage and exchange format, 2024-01-02 19:16:19.
	Layout = "2006-01-02 15:04:05"
	// MediumLayout renders dates such as Feb 4, 2024.
	MediumLayout = "Jan 2, 2006"
	// ShortLayout renders dates such as Feb 4.
	ShortLayout = "Jan 2"
)

// ErrorPrefix marks a timestamp that could not be parsed.
const ErrorPrefix = "Error "

// Formatter converts timestamps for one local time zone.
// The zero value uses time.Local and time.Now.
type Formatter struct {
	Location *time.Location
	Now      func() time.Time
}

// Default is the formatter for the process time zone.
var Default = Formatter{}

// New returns a formatter for loc. A nil loc means time.Local.
func New(loc *time.Location) Formatter {
	return Formatter{Location: loc}
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

func (f Formatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// UTCToLocal converts a stored UTC timestamp to local time.
func (f Formatter) UTCToLocal(s string) string {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return errorValue(s)
	}
	return t.In(f.location()).Format(Layout)
}

// LocalToUTC converts a local timestamp to its UTC storage form.
func (f Formatter) LocalToUTC(s string) string {
	t, err := f.ParseLocal(s)
	if err != nil {
		return errorValue(s)
	}
	return t.UTC().Format(Layout)
}

// ParseLocal parses a local timestamp.
func (f Formatter) ParseLocal(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, f.location())
}

// CurrentUTC returns the current time in storage form.
func (f Formatter) CurrentUTC() string {
	return f.now().UTC().Format(Layout)
}

// CurrentLocal returns the current time in local form.
func (f Formatter) CurrentLocal() string {
	return f.now().In(f.location()).Format(Layout)
}

// MediumDate reformats a local timestamp as MediumLayout.
func (f Formatter) MediumDate(s string) string {
	return f.reformat(s, MediumLayout)
}

// ShortDate reformats a local timestamp as ShortLayout.
func (f Formatter) ShortDate(s string) string {
	return f.reformat(s, ShortLayout)
}

func (f Formatter) reformat(s, layout string) string {
	t, err := f.ParseLocal(s)
	if err != nil {
		return errorValue(s)
	}
	return t.Format(layout)
}

// IsError reports whether s is a parse-failure marker.
func IsError(s string) bool {
	return strings.HasPrefix(s, ErrorPrefix)
}

func errorValue(s string) string {
	return ErrorPrefix + s
}
