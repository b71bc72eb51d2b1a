// Package prefs persists small string preferences, such as each zone's sort
// option, and reports changes made to them.
package prefs

import (
	"sync"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// listeners is the change-callback registry shared by the preference
// implementations.
type listeners struct {
	mu     sync.Mutex
	nextID uint64
	fns    map[uint64]func(key string)
}

func (l *listeners) add(fn func(key string)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[uint64]func(key string))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.fns, id)
		})
	}
}

// notify calls every listener for each key, outside the registry lock.
func (l *listeners) notify(keys ...string) {
	if len(keys) == 0 {
		return
	}
	l.mu.Lock()
	fns := make([]func(string), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, key := range keys {
		for _, fn := range fns {
			fn(key)
		}
	}
}

// SortOptionFor returns the persisted sort option of zone, or
// types.DefaultSortOption when nothing usable is stored.
func SortOptionFor(p types.Preferences, zone types.Zone) types.SortOption {
	name, ok := p.GetString(zone.SortPreferenceKey())
	if !ok {
		return types.DefaultSortOption
	}
	return types.SortOptionOrDefault(name)
}

// SaveSortOption persists option for zone.
func SaveSortOption(p types.Preferences, zone types.Zone, option types.SortOption) error {
	if !option.Valid() {
		return types.ErrInvalidSortOption
	}
	return p.SetString(zone.SortPreferenceKey(), string(option))
}
