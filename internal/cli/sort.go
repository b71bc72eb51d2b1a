package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

// parseSortArg accepts an option name or its selector id (0-3).
func parseSortArg(arg string) (types.SortOption, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		option, ok := types.SortOptionFromID(id)
		if !ok {
			return "", fmt.Errorf("%w: selector %d", types.ErrInvalidSortOption, id)
		}
		return option, nil
	}
	return types.ParseSortOption(arg)
}

func newSortCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sort [option]",
		Short: "Show or set the zone's sort option",
		Long: `Sort prints the zone's saved sort option, or saves a new one.

Options: A_Z (0), Z_A (1), OLDEST_FIRST (2), NEWEST_FIRST (3). Each zone
keeps its own option.`,
		Example: `  pouch sort
  pouch sort A_Z
  pouch --zone mysteries sort 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var option types.SortOption
			if len(args) == 1 {
				var err error
				if option, err = parseSortArg(args[0]); err != nil {
					return err
				}
			}
			return withApp(cmd, flags, func(a *app) error {
				if option != "" {
					if err := a.repo.SortNotes(option); err != nil {
						return sysErr("save sort option: %w", err)
					}
				}
				current := a.repo.SortOption()
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"zone": a.zone.String(),
						"sort": current,
						"id":   current.ID(),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.zone, current)
				return nil
			})
		},
	}
}
