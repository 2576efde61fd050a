package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables of the database with row counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, cleanup, err := openEngine(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		catalog, err := e.Tables(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(catalog.Tables) == 0 {
			fmt.Fprintln(out, "No tables found.")
			return nil
		}

		var total int64
		table := tablewriter.NewWriter(out)
		table.SetHeader([]string{"Name", "Table", "Rows"})
		for _, t := range catalog.Tables {
			table.Append([]string{t.Name, t.Physical, strconv.FormatInt(t.Rows, 10)})
			total += t.Rows
		}
		table.SetFooter([]string{"", "Total", strconv.FormatInt(total, 10)})
		table.Render()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
}
