package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

var (
	_ types.Preferences       = (*File)(nil)
	_ types.PreferenceWatcher = (*File)(nil)
)

// File keeps preferences in a YAML file read and written through viper.
// Changes made by other processes are picked up once Watch is running.
type File struct {
	mu     sync.Mutex
	v      *viper.Viper
	path   string
	values map[string]string
	logger zerolog.Logger
	listeners

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFile loads the preference file at path. A missing file is treated as
// empty and created on the first write.
func NewFile(path string, logger zerolog.Logger) (*File, error) {
	f := &File{
		path:   path,
		logger: logger.With().Str("component", "prefs").Logger(),
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the preference file path.
func (f *File) Path() string { return f.path }

// GetString returns the value stored under key.
func (f *File) GetString(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// SetString stores value under key and writes the file.
func (f *File) SetString(key, value string) error {
	f.mu.Lock()
	old, existed := f.values[key]
	if err := f.v.MergeConfigMap(map[string]any{key: value}); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	if err := f.v.WriteConfigAs(f.path); err != nil {
		f.mu.Unlock()
		return fmt.Errorf("writing preferences: %w", err)
	}
	f.values[key] = value
	f.mu.Unlock()

	if !existed || old != value {
		f.notify(key)
	}
	return nil
}

// OnChange registers fn to be called with the key of every changed value,
// whether it was changed through this File or by editing the file.
func (f *File) OnChange(fn func(key string)) func() {
	return f.add(fn)
}

// Watch starts following the preference file. The directory is watched
// rather than the file so that editors replacing the file are noticed.
func (f *File) Watch() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher != nil {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating preferences directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	f.watcher = watcher
	f.done = make(chan struct{})
	go f.run(watcher, f.done)
	return nil
}

// Close stops watching. Close is idempotent.
func (f *File) Close() error {
	f.mu.Lock()
	watcher, done := f.watcher, f.done
	f.watcher, f.done = nil, nil
	f.mu.Unlock()

	if watcher == nil {
		return nil
	}
	err := watcher.Close()
	<-done
	return err
}

func (f *File) run(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			f.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error().Err(err).Msg("watching preferences")
		}
	}
}

// handleEvent reloads the file after a change to it and notifies listeners
// of every key whose value differs from before.
func (f *File) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(f.path) {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	f.mu.Lock()
	before := f.values
	err := f.load()
	after := f.values
	f.mu.Unlock()

	if err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("reloading preferences")
		return
	}

	changed := diffKeys(before, after)
	if len(changed) > 0 {
		f.logger.Debug().Strs("keys", changed).Msg("preferences changed")
	}
	f.notify(changed...)
}

// load reads the file into a fresh value map. The caller holds f.mu or has
// exclusive access.
func (f *File) load() error {
	values := make(map[string]string)

	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		f.v = freshViper(f.path)
		f.values = values
		return nil
	}

	v := freshViper(f.path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading preferences: %w", err)
	}
	for _, key := range v.AllKeys() {
		values[key] = v.GetString(key)
	}
	f.v = v
	f.values = values
	return nil
}

func freshViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v
}

// diffKeys returns the sorted keys whose values differ between a and b.
func diffKeys(a, b map[string]string) []string {
	var keys []string
	for k, av := range a {
		if bv, ok := b[k]; !ok || av != bv {
			keys = append(keys, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
