// Package repository keeps a published note list in step with the store of
// the active zone.
//
// The repository subscribes to both zone stores. A change in the active
// zone's store re-reads that zone with its persisted sort option and current
// search query and publishes the result; changes in the other store are
// ignored until the user toggles to it.
package repository

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/internal/observe"
	"github.com/mesh-intelligence/pouch/internal/prefs"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Compile-time interface check: Repository must implement NoteRepository.
var _ types.NoteRepository = (*Repository)(nil)

// Repository is the zone repository.
type Repository struct {
	stores map[types.Zone]types.NoteStore
	prefs  types.Preferences
	clock  datetime.Formatter
	logger zerolog.Logger

	mu      sync.Mutex
	active  types.Zone
	queries map[types.Zone]string
	cancels []func()
	closed  bool

	// refreshMu serializes read-and-publish so that an older read never
	// overwrites a newer one. ToggleZone holds it across the switch, the read
	// and both publishes.
	refreshMu sync.Mutex

	notes *observe.Value[[]types.Note]
	zone  *observe.Value[types.Zone]
}

// New subscribes to both stores and publishes the notes of the initial zone.
// The repository does not own the stores; closing them is up to the caller.
func New(creative, mysteries types.NoteStore, p types.Preferences, opts ...Option) (*Repository, error) {
	if creative == nil || mysteries == nil {
		return nil, errors.New("repository: both zone stores are required")
	}
	if p == nil {
		return nil, errors.New("repository: preferences are required")
	}

	o := options{logger: zerolog.Nop(), clock: datetime.Default, zone: types.ZoneCreative}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.zone.Valid() {
		return nil, fmt.Errorf("%w: %d", types.ErrUnknownZone, int(o.zone))
	}

	r := &Repository{
		stores: map[types.Zone]types.NoteStore{
			types.ZoneCreative:  creative,
			types.ZoneMysteries: mysteries,
		},
		prefs:   p,
		clock:   o.clock,
		logger:  o.logger.With().Str("component", "repository").Logger(),
		active:  o.zone,
		queries: make(map[types.Zone]string),
		notes:   observe.NewValue([]types.Note{}),
		zone:    observe.NewValue(o.zone),
	}

	for _, z := range types.Zones {
		r.cancels = append(r.cancels, r.stores[z].Subscribe(func(ev types.ChangeEvent) {
			r.onStoreChange(z, ev)
		}))
	}
	if w, ok := p.(types.PreferenceWatcher); ok {
		r.cancels = append(r.cancels, w.OnChange(r.onPreferenceChange))
	}

	if err := r.refresh(o.zone); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Notes is the published note list of the active zone.
func (r *Repository) Notes() types.Observable[[]types.Note] { return r.notes }

// CurrentZone is the published active zone.
func (r *Repository) CurrentZone() types.Observable[types.Zone] { return r.zone }

// ToggleZone makes zone active, re-reads it with its own sort option and
// search query, and publishes the notes and then the zone.
func (r *Repository) ToggleZone(zone types.Zone) error {
	if !zone.Valid() {
		return fmt.Errorf("%w: %d", types.ErrUnknownZone, int(zone))
	}

	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return types.ErrRepositoryClosed
	}
	prev := r.active
	r.active = zone
	r.mu.Unlock()

	if err := r.reload(zone); err != nil {
		r.mu.Lock()
		r.active = prev
		r.mu.Unlock()
		return err
	}
	r.zone.Set(zone)

	r.logger.Debug().Stringer("zone", zone).Stringer("from", prev).Msg("toggled zone")
	return nil
}

// CreateNote inserts a note into the active zone. The published list is
// updated by the store's change event before CreateNote returns.
func (r *Repository) CreateNote(title, body string) (int64, error) {
	store, _, err := r.activeStore()
	if err != nil {
		return 0, err
	}
	return store.Insert(title, body)
}

// UpdateNote rewrites oldNote with newTitle, newBody and the current local
// time. Updating a note that no longer exists does nothing.
func (r *Repository) UpdateNote(newTitle, newBody string, oldNote types.Note) error {
	store, _, err := r.activeStore()
	if err != nil {
		return err
	}
	_, err = store.Update(types.Note{
		ID:        oldNote.ID,
		Title:     newTitle,
		Body:      newBody,
		Timestamp: r.clock.CurrentLocal(),
	})
	return err
}

// DeleteNote removes note from the active zone.
func (r *Repository) DeleteNote(note types.Note) error {
	store, _, err := r.activeStore()
	if err != nil {
		return err
	}
	_, err = store.Delete(note)
	return err
}

// GetNote returns the note with id from the active zone.
func (r *Repository) GetNote(id int64) (types.Note, error) {
	store, _, err := r.activeStore()
	if err != nil {
		return types.Note{}, err
	}
	return store.GetByID(id)
}

// SearchNotes remembers query for the active zone and publishes the
// matching notes. An empty query clears the filter.
func (r *Repository) SearchNotes(query string) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return types.ErrRepositoryClosed
	}
	zone := r.active
	r.queries[zone] = query
	r.mu.Unlock()

	return r.refresh(zone)
}

// SortNotes persists option for the active zone and publishes the reordered
// list.
func (r *Repository) SortNotes(option types.SortOption) error {
	if !option.Valid() {
		return fmt.Errorf("%w: %q", types.ErrInvalidSortOption, string(option))
	}
	_, zone, err := r.activeStore()
	if err != nil {
		return err
	}
	if err := prefs.SaveSortOption(r.prefs, zone, option); err != nil {
		return fmt.Errorf("saving sort option: %w", err)
	}
	return r.refresh(zone)
}

// SortOption returns the persisted sort option of the active zone.
func (r *Repository) SortOption() types.SortOption {
	r.mu.Lock()
	zone := r.active
	r.mu.Unlock()
	return prefs.SortOptionFor(r.prefs, zone)
}

// Query returns the search query remembered for zone.
func (r *Repository) Query(zone types.Zone) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries[zone]
}

// Close cancels the store and preference subscriptions. Close is idempotent.
func (r *Repository) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	cancels := r.cancels
	r.cancels = nil
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return nil
}

func (r *Repository) activeStore() (types.NoteStore, types.Zone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, 0, types.ErrRepositoryClosed
	}
	return r.stores[r.active], r.active, nil
}

func (r *Repository) onStoreChange(zone types.Zone, ev types.ChangeEvent) {
	r.logger.Debug().
		Stringer("zone", zone).
		Str("op", string(ev.Op)).
		Int64("note_id", ev.NoteID).
		Uint64("seq", ev.Seq).
		Msg("store changed")

	if err := r.refresh(zone); err != nil {
		r.logger.Error().Err(err).Stringer("zone", zone).Msg("refreshing notes")
	}
}

func (r *Repository) onPreferenceChange(key string) {
	r.mu.Lock()
	zone := r.active
	r.mu.Unlock()

	if key != zone.SortPreferenceKey() {
		return
	}
	if err := r.refresh(zone); err != nil {
		r.logger.Error().Err(err).Stringer("zone", zone).Msg("refreshing notes")
	}
}

// refresh re-reads zone and publishes the result if zone is still the
// active zone once the read completes.
func (r *Repository) refresh(zone types.Zone) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	return r.reload(zone)
}

// reload is refresh for callers that hold refreshMu.
func (r *Repository) reload(zone types.Zone) error {
	r.mu.Lock()
	if r.closed || r.active != zone {
		r.mu.Unlock()
		return nil
	}
	query := r.queries[zone]
	r.mu.Unlock()

	option := prefs.SortOptionFor(r.prefs, zone)
	store := r.stores[zone]

	var (
		notes []types.Note
		err   error
	)
	if query == "" {
		notes, err = store.GetAll(option)
	} else {
		notes, err = store.Search(query, option)
	}
	if err != nil {
		return fmt.Errorf("reading %s notes: %w", zone, err)
	}

	r.mu.Lock()
	current := r.active == zone && !r.closed
	r.mu.Unlock()
	if !current {
		return nil
	}

	r.notes.Set(notes)
	return nil
}
