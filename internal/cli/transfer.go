package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export the zone's notes as JSON Lines",
		Long: `Export writes every note of the zone as one JSON object per line, with
timestamps in UTC. Without a file the export goes to standard output; a file
is replaced atomically.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error {
				t, err := a.transfer()
				if err != nil {
					return err
				}
				if len(args) == 0 {
					if err := t.Export(cmd.OutOrStdout()); err != nil {
						return sysErr("export: %w", err)
					}
					return nil
				}
				if err := t.ExportFile(args[0]); err != nil {
					return sysErr("export: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", a.zone, args[0])
				return nil
			})
		},
	}
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import notes from a JSON Lines export",
		Long: `Import adds the notes of an export file to the zone, giving them new ids.
Lines that are not valid notes are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(a *app) error {
				t, err := a.transfer()
				if err != nil {
					return err
				}
				n, err := t.ImportFile(args[0])
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("import: %w", err)
				}
				if err != nil {
					return sysErr("import: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"imported": n, "zone": a.zone.String()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d note(s) into %s\n", n, a.zone)
				return nil
			})
		},
	}
}
