package repository

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Option configures a Repository.
type Option func(*options)

type options struct {
	logger zerolog.Logger
	clock  datetime.Formatter
	zone   types.Zone
}

// WithLogger sets the repository logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock sets the formatter that stamps updated notes.
func WithClock(clock datetime.Formatter) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithInitialZone makes zone active at construction instead of
// types.ZoneCreative.
func WithInitialZone(zone types.Zone) Option {
	return func(o *options) {
		o.zone = zone
	}
}
