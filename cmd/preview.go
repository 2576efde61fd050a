package cmd

import (
	"fmt"
	"io"
	"strconv"

	"db-sync/internal/dump"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Show the tables and row counts of a dump without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := e.Preview(args[0])
		if err != nil {
			return err
		}
		printPreview(cmd.OutOrStdout(), args[0], p)
		return nil
	},
}

func printPreview(out io.Writer, name string, p *dump.Preview) {
	fmt.Fprintf(out, "🔍 %s\n", name)
	if p.Title != "" {
		fmt.Fprintf(out, "%s\n", p.Title)
	}
	if p.NeedsRewrite() {
		fmt.Fprintf(out, "URL rewrite: %s -> %s\n", p.SourceURL, p.TargetURL)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Table", "Rows"})
	for _, t := range p.Tables {
		table.Append([]string{t.Table, strconv.Itoa(t.Rows)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(p.TotalRows)})
	table.Render()
}

func printWarnings(out io.Writer, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(out, "    └ Warning: %s\n", w)
	}
}

func init() {
	RootCmd.AddCommand(previewCmd)
}
