package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger   zerolog.Logger
	clock    datetime.Formatter
	mappings []types.ColumnMapping
	version  int
	source   string
}

func defaultOptions() options {
	return options{
		logger:   zerolog.Nop(),
		clock:    datetime.Default,
		mappings: DefaultColumnMappings,
		version:  SchemaVersion,
	}
}

// WithLogger sets the logger for schema and mutation messages.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the formatter used for the current time and for
// converting timestamps between UTC and local time.
func WithClock(clock datetime.Formatter) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithColumnMappings replaces the renamed-column pairs applied when a
// migration copies rows.
func WithColumnMappings(mappings ...types.ColumnMapping) Option {
	return func(o *options) {
		o.mappings = mappings
	}
}

// WithSchemaVersion overrides the version the file is brought to.
func WithSchemaVersion(version int) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithSource sets the label carried by change events. It defaults to the
// file name without extension.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}
