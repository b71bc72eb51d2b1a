// Package logging builds the zerolog logger shared by pouch components.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Formats accepted by WithFormat.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Build collects logger settings. The zero value writes JSON to stderr at
// warn level.
type Build struct {
	writer io.Writer
	path   string
	level  string
	format string
}

// Log is a built logger and the file it writes to, if any.
type Log struct {
	Logger zerolog.Logger
	file   *os.File
}

// New starts a logger build.
func New() *Build {
	return &Build{}
}

// ToWriter sends output to w.
func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// ToPath appends output to the file at path. It wins over ToWriter.
func (b *Build) ToPath(path string) *Build {
	b.path = path
	return b
}

// WithLevel sets the minimum level by name (trace, debug, info, warn,
// error, disabled).
func (b *Build) WithLevel(level string) *Build {
	b.level = level
	return b
}

// WithFormat selects console or json output.
func (b *Build) WithFormat(format string) *Build {
	b.format = format
	return b
}

// Make builds the logger.
func (b *Build) Make() (*Log, error) {
	level := zerolog.WarnLevel
	if b.level != "" {
		parsed, err := zerolog.ParseLevel(b.level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}

	log := new(Log)
	var w io.Writer = os.Stderr
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		log.file = f
		w = zerolog.SyncWriter(f)
	}

	switch b.format {
	case "", FormatJSON:
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: b.path != ""}
	default:
		log.Close()
		return nil, fmt.Errorf("unknown log format %q", b.format)
	}

	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return log, nil
}

// Close closes the log file, if any.
func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
