package types

import "errors"

// Config holds the settings a Pouch process starts with.
type Config struct {
	Backend   string `json:"backend" yaml:"backend" mapstructure:"backend" validate:"required,oneof=sqlite"`
	DataDir   string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	LogLevel  string `json:"log_level" yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	LogFormat string `json:"log_format" yaml:"log_format" mapstructure:"log_format" validate:"omitempty,oneof=console json"`
	LogFile   string `json:"log_file" yaml:"log_file" mapstructure:"log_file"`
	Timezone  string `json:"timezone" yaml:"timezone" mapstructure:"timezone" validate:"omitempty,timezone"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks the backend selection. Field-level rules (log level,
// timezone) are enforced by the config loader.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return nil
}
