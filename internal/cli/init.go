package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pouch/internal/config"
	"github.com/mesh-intelligence/pouch/internal/paths"
	"github.com/mesh-intelligence/pouch/pkg/sqlite"
	"github.com/mesh-intelligence/pouch/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize pouch storage",
		Long: "Create the configuration and data directories, write a default config.yaml\n" +
			"if none exists, and create or migrate both zone databases.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	configDir, _, dataDir, err := resolveDirs(flags)
	if err != nil {
		return err
	}

	written, err := config.WriteDefault(configDir, dataDir)
	if err != nil {
		return sysErr("write config: %w", err)
	}

	stores, err := sqlite.OpenZones(dataDir)
	if err != nil {
		return &exitError{code: exitSysError, err: fmt.Errorf("initialize storage: %w", err)}
	}
	for _, z := range types.Zones {
		if err := stores[z].Close(); err != nil {
			return sysErr("finalize storage: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if flags.jsonMode {
		return writeJSON(out, map[string]any{
			"config_dir":     configDir,
			"data_dir":       dataDir,
			"config_written": written,
			"schema_version": sqlite.SchemaVersion,
		})
	}
	fmt.Fprintf(out, "Pouch initialized in %s\n", dataDir)
	if written {
		fmt.Fprintf(out, "Wrote %s\n", paths.ConfigFile(configDir))
	}
	return nil
}
