package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Restore a backup and delete it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, cleanup, err := openEngine(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		ok, err := confirm(out, fmt.Sprintf("Restore %s? Current table contents are replaced.", args[0]))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		bar := newStatementBar("Restoring: ")
		res, err := e.Restore(ctx, args[0], bar.update)
		bar.stop()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n✓ Restored %d tables, %d rows\n", res.TablesProcessed, res.RowsImported)
		printWarnings(out, res.Errors)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
}
