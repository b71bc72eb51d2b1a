package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pouch/internal/config"
	"github.com/mesh-intelligence/pouch/internal/datetime"
	"github.com/mesh-intelligence/pouch/internal/logging"
	"github.com/mesh-intelligence/pouch/internal/paths"
	"github.com/mesh-intelligence/pouch/internal/prefs"
	"github.com/mesh-intelligence/pouch/internal/repository"
	"github.com/mesh-intelligence/pouch/pkg/sqlite"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

// transferer is implemented by stores that can export and import JSONL.
type transferer interface {
	Export(w io.Writer) error
	ExportFile(path string) error
	ImportFile(path string) (int, error)
}

// app is everything a command needs, opened from the resolved directories
// and config.
type app struct {
	configDir string
	dataDir   string
	cfg       types.Config
	zone      types.Zone
	clock     datetime.Formatter
	log       *logging.Log
	logger    zerolog.Logger
	stores    map[types.Zone]types.NoteStore
	prefs     *prefs.File
	repo      *repository.Repository
}

// resolveDirs returns the config directory, the loaded config, and the
// data directory.
func resolveDirs(flags *rootFlags) (string, types.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return "", types.Config{}, "", sysErr("resolve config dir: %w", err)
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return "", types.Config{}, "", err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return "", types.Config{}, "", sysErr("resolve data dir: %w", err)
	}
	return configDir, cfg, dataDir, nil
}

// openApp loads config, builds the logger, and opens both zone stores, the
// preference file, and the repository positioned on the --zone flag.
// The caller must Close the app.
func openApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	zone, err := types.ParseZone(flags.zone)
	if err != nil {
		return nil, err
	}

	configDir, cfg, dataDir, err := resolveDirs(flags)
	if err != nil {
		return nil, err
	}

	a := &app{configDir: configDir, dataDir: dataDir, cfg: cfg, zone: zone}

	build := logging.New().
		ToWriter(cmd.ErrOrStderr()).
		WithLevel(cfg.LogLevel).
		WithFormat(cfg.LogFormat)
	if cfg.LogFile != "" {
		build = build.ToPath(cfg.LogFile)
	}
	a.log, err = build.Make()
	if err != nil {
		return nil, err
	}
	a.logger = a.log.Logger

	loc, err := config.Location(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.clock = datetime.New(loc)

	a.stores, err = sqlite.OpenZones(dataDir, sqlite.WithLogger(a.logger), sqlite.WithClock(a.clock))
	if err != nil {
		a.Close()
		if errors.Is(err, types.ErrMigration) {
			return nil, &exitError{code: exitSysError, err: err}
		}
		return nil, sysErr("open stores: %w", err)
	}

	a.prefs, err = prefs.NewFile(paths.PreferencesFile(configDir), a.logger)
	if err != nil {
		a.Close()
		return nil, sysErr("open preferences: %w", err)
	}

	a.repo, err = repository.New(
		a.stores[types.ZoneCreative],
		a.stores[types.ZoneMysteries],
		a.prefs,
		repository.WithLogger(a.logger),
		repository.WithClock(a.clock),
		repository.WithInitialZone(zone),
	)
	if err != nil {
		a.Close()
		return nil, sysErr("open repository: %w", err)
	}

	a.logger.Debug().
		Str("config_dir", configDir).
		Str("data_dir", dataDir).
		Stringer("zone", zone).
		Msg("opened pouch")
	return a, nil
}

// store returns the store of the active zone.
func (a *app) store() types.NoteStore {
	return a.stores[a.zone]
}

// transfer returns the active store's export and import methods.
func (a *app) transfer() (transferer, error) {
	t, ok := a.store().(transferer)
	if !ok {
		return nil, fmt.Errorf("%s store does not support export and import", a.zone)
	}
	return t, nil
}

// Close releases everything openApp opened.
func (a *app) Close() error {
	var errs []error
	if a.repo != nil {
		errs = append(errs, a.repo.Close())
	}
	if a.prefs != nil {
		errs = append(errs, a.prefs.Close())
	}
	for _, s := range a.stores {
		errs = append(errs, s.Close())
	}
	errs = append(errs, a.log.Close())
	return errors.Join(errs...)
}

// withApp opens the app, runs fn, and closes the app.
func withApp(cmd *cobra.Command, flags *rootFlags, fn func(a *app) error) error {
	a, err := openApp(cmd, flags)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
