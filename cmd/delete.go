package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <file>",
	Aliases: []string{"rm"},
	Short:   "Delete a dump or backup file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		ok, err := confirm(out, fmt.Sprintf("Delete %s?", args[0]))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		if err := e.Delete(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
}
