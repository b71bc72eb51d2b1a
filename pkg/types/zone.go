package types

import "fmt"

// Zone selects which note store backs the repository's current view.
type Zone int

// The two zones. ZoneCreative is the zone the repository starts in.
const (
	ZoneCreative Zone = iota
	ZoneMysteries
)

// Zones lists every zone in a stable order.
var Zones = []Zone{ZoneCreative, ZoneMysteries}

var zoneNames = map[Zone]string{
	ZoneCreative:  "creative",
	ZoneMysteries: "mysteries",
}

// String returns the lower-case zone name used in file names and flags.
func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("zone(%d)", int(z))
}

// Valid reports whether z is one of the declared zones.
func (z Zone) Valid() bool {
	_, ok := zoneNames[z]
	return ok
}

// Other returns the zone that is not z.
func (z Zone) Other() Zone {
	if z == ZoneCreative {
		return ZoneMysteries
	}
	return ZoneCreative
}

// SortPreferenceKey is the preference key under which the zone's sort option
// is persisted.
func (z Zone) SortPreferenceKey() string {
	return z.String() + "_zone_sort_option"
}

// DatabaseFile is the storage file name of the zone inside the data directory.
func (z Zone) DatabaseFile() string {
	return z.String() + ".db"
}

// ParseZone maps a zone name to its Zone. Returns ErrUnknownZone otherwise.
func ParseZone(name string) (Zone, error) {
	for z, n := range zoneNames {
		if n == name {
			return z, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownZone, name)
}
