// Package sqlite provides the public API for the SQLite note store.
// It exposes the factory functions while keeping the implementation
// internal.
package sqlite

import (
	"fmt"

	"github.com/mesh-intelligence/pouch/internal/paths"
	"github.com/mesh-intelligence/pouch/internal/sqlite"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Option configures a store.
type Option = sqlite.Option

// Store options.
var (
	WithLogger         = sqlite.WithLogger
	WithClock          = sqlite.WithClock
	WithColumnMappings = sqlite.WithColumnMappings
	WithSchemaVersion  = sqlite.WithSchemaVersion
	WithSource         = sqlite.WithSource
)

// SchemaVersion is the schema version stores are brought to by default.
const SchemaVersion = sqlite.SchemaVersion

// Open opens the note store at path.
//
// Example:
//
//	store, err := sqlite.Open("notes/creative.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
func Open(path string, opts ...Option) (types.NoteStore, error) {
	return sqlite.Open(path, opts...)
}

// OpenZones opens the store of every zone inside dataDir, keyed by zone.
// Each store's events carry the zone name as source. If any store fails to
// open, the ones already opened are closed.
func OpenZones(dataDir string, opts ...Option) (map[types.Zone]types.NoteStore, error) {
	stores := make(map[types.Zone]types.NoteStore, len(types.Zones))
	for _, z := range types.Zones {
		zoneOpts := append([]Option{sqlite.WithSource(z.String())}, opts...)
		s, err := sqlite.Open(paths.ZoneFile(dataDir, z), zoneOpts...)
		if err != nil {
			for _, opened := range stores {
				opened.Close()
			}
			return nil, fmt.Errorf("opening %s zone: %w", z, err)
		}
		stores[z] = s
	}
	return stores, nil
}
