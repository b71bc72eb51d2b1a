package cli

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pouch/pkg/types"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", types.ErrInvalidID, arg)
	}
	return id, nil
}

func newAddCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> [body]",
		Short: "Add a note to the zone",
		Example: `  pouch add "Buy milk" "2 liters"
  pouch --zone mysteries add "Who took the cookies?"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title, body := args[0], ""
			if len(args) == 2 {
				body = args[1]
			}
			return withApp(cmd, flags, func(a *app) error {
				id, err := a.repo.CreateNote(title, body)
				if err != nil {
					return sysErr("add note: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"id": id, "zone": a.zone.String()})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added note %d to %s\n", id, a.zone)
				return nil
			})
		},
	}
}

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(a *app) error {
				note, err := a.repo.GetNote(id)
				if err != nil {
					return fmt.Errorf("get note %d: %w", id, err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), note)
				}
				printNote(cmd.OutOrStdout(), note)
				return nil
			})
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	var (
		search string
		sortBy string
		follow bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the notes of the zone",
		Long: `List prints the notes of the zone in the zone's sort order.

Use --search to keep notes whose title or body contains the text, ignoring
case. Use --sort to order this listing differently without changing the
zone's saved option. With --follow the list is printed again whenever it
changes, including when the zone's sort option is edited in
preferences.yaml, until interrupted.`,
		Example: `  pouch list
  pouch list --search milk
  pouch list --sort A_Z --json
  pouch --zone mysteries list --follow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var option types.SortOption
			if sortBy != "" {
				var err error
				if option, err = parseSortArg(sortBy); err != nil {
					return err
				}
			}
			return withApp(cmd, flags, func(a *app) error {
				if follow {
					return followNotes(cmd, flags, a, search)
				}
				notes, err := listNotes(a, search, option)
				if err != nil {
					return err
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), notes)
				}
				printNotes(cmd.OutOrStdout(), notes, a.clock)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "only notes whose title or body contains this text")
	cmd.Flags().StringVar(&sortBy, "sort", "", "order for this listing (A_Z, Z_A, OLDEST_FIRST, NEWEST_FIRST or 0-3)")
	cmd.Flags().BoolVar(&follow, "follow", false, "print the list again on every change until interrupted")
	return cmd
}

// listNotes returns the zone's notes through the repository, or straight
// from the store when a one-off order is requested.
func listNotes(a *app, search string, option types.SortOption) ([]types.Note, error) {
	if option != "" {
		notes, err := a.store().Search(search, option)
		if err != nil {
			return nil, sysErr("list notes: %w", err)
		}
		return notes, nil
	}
	if err := a.repo.SearchNotes(search); err != nil {
		return nil, sysErr("list notes: %w", err)
	}
	return a.repo.Notes().Get(), nil
}

// followNotes prints the published list each time it changes.
func followNotes(cmd *cobra.Command, flags *rootFlags, a *app, search string) error {
	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.prefs.Watch(); err != nil {
		return sysErr("watch preferences: %w", err)
	}
	if err := a.repo.SearchNotes(search); err != nil {
		return sysErr("list notes: %w", err)
	}

	updates, cancel := a.repo.Notes().Subscribe()
	defer cancel()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case notes, ok := <-updates:
			if !ok {
				return nil
			}
			if flags.jsonMode {
				if err := writeJSON(out, notes); err != nil {
					return err
				}
				continue
			}
			fmt.Fprintf(out, "# %s, %s\n", a.zone, a.repo.SortOption())
			printNotes(out, notes, a.clock)
		}
	}
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func newEditCmd(flags *rootFlags) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a note's title or body",
		Long: `Edit rewrites a note's title and body and stamps it with the current time.
Fields without a flag keep their value.`,
		Example: `  pouch edit 3 --title "Buy oat milk"
  pouch edit 3 --body "1 liter"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("body") {
				return fmt.Errorf("nothing to change: pass --title or --body")
			}
			return withApp(cmd, flags, func(a *app) error {
				old, err := a.repo.GetNote(id)
				if err != nil {
					return fmt.Errorf("edit note %d: %w", id, err)
				}
				newTitle, newBody := old.Title, old.Body
				if cmd.Flags().Changed("title") {
					newTitle = title
				}
				if cmd.Flags().Changed("body") {
					newBody = body
				}
				if err := a.repo.UpdateNote(newTitle, newBody, old); err != nil {
					return sysErr("edit note: %w", err)
				}
				updated, err := a.repo.GetNote(id)
				if err != nil {
					return fmt.Errorf("edit note %d: %w", id, err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), updated)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")
	return cmd
}

func newRmCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(a *app) error {
				note, err := a.repo.GetNote(id)
				if err != nil {
					return fmt.Errorf("delete note %d: %w", id, err)
				}
				if err := a.repo.DeleteNote(note); err != nil {
					return sysErr("delete note: %w", err)
				}
				if flags.jsonMode {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"deleted": id})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d\n", id)
				return nil
			})
		},
	}
}
