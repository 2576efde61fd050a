package cmd

import (
	"fmt"
	"io"

	"db-sync/internal/registry"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report dump files added or removed since the last check",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := e.Check(cmd.Context())
		if err != nil {
			return err
		}
		printChanges(cmd.OutOrStdout(), res)
		return nil
	},
}

func printChanges(out io.Writer, res *registry.Result) {
	if !res.Changed {
		fmt.Fprintln(out, "No changes.")
		return
	}
	if res.First {
		fmt.Fprintf(out, "Found %d dumps and %d backups.\n", len(res.Dumps()), len(res.Backups()))
		return
	}
	for _, id := range res.Added {
		fmt.Fprintf(out, "+ %s\n", id)
	}
	for _, id := range res.Removed {
		fmt.Fprintf(out, "- %s\n", id)
	}
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
