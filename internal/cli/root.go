// Package cli implements the pouch command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	zone      string
	jsonMode  bool
}

// exitError carries the exit code a failure should produce.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// sysErr marks err as a failure of the environment rather than the input.
func sysErr(format string, err error) error {
	return &exitError{code: exitSysError, err: fmt.Errorf(format, err)}
}

// NewRootCmd creates the top-level "pouch" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "pouch",
		Short: "Keep notes in two zones",
		Long: "Pouch keeps notes in two independent zones, Creative and Box of Mysteries,\n" +
			"each stored in its own SQLite file with its own sort order.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir, or $POUCH_CONFIG_DIR)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: config data_dir, or $POUCH_DATA_DIR)")
	root.PersistentFlags().StringVar(&flags.zone, "zone", types.ZoneCreative.String(), "zone to work in (creative, mysteries)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(flags))
	root.AddCommand(newAddCmd(flags))
	root.AddCommand(newGetCmd(flags))
	root.AddCommand(newListCmd(flags))
	root.AddCommand(newEditCmd(flags))
	root.AddCommand(newRmCmd(flags))
	root.AddCommand(newSortCmd(flags))
	root.AddCommand(newExportCmd(flags))
	root.AddCommand(newImportCmd(flags))

	return root
}

// Run executes the command line args and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return exitSuccess
}

// exitCode maps an error to its exit code. Anything not marked as a
// system failure is the user's to fix.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
