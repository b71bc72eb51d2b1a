package types

// Preferences is the key-value collaborator that persists per-zone settings.
type Preferences interface {
	// GetString returns the stored value and whether it was set.
	GetString(key string) (string, bool)

	// SetString stores value under key.
	SetString(key, value string) error
}

// PreferenceWatcher is implemented by preference stores that can report
// changes made outside the process (for example, an edited file).
type PreferenceWatcher interface {
	// OnChange registers fn to be called with the changed key.
	// Returns a function that removes the registration.
	OnChange(fn func(key string)) (cancel func())
}
