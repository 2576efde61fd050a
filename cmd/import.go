package cmd

import (
	"fmt"

	"db-sync/internal/engine"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

var importKeep bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Back up the affected tables, then import a dump",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, cleanup, err := openEngine(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		out := cmd.OutOrStdout()
		p, err := e.Preview(args[0])
		if err != nil {
			return err
		}
		printPreview(out, args[0], p)

		ok, err := confirm(out, "Import this file? The current tables are backed up first.")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		bar := newStatementBar("Importing: ")
		res, err := e.Import(ctx, engine.ImportRequest{
			Name:        args[0],
			Keep:        importKeep,
			OnStatement: bar.update,
		})
		bar.stop()
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n✓ Imported %d tables, %d rows\n", res.TablesProcessed, res.RowsImported)
		if res.URLRewrites > 0 {
			fmt.Fprintf(out, "URL rewrites: %d\n", res.URLRewrites)
		}
		if res.Backup != nil {
			fmt.Fprintf(out, "Backup:       %s\n", res.Backup.File.Name)
		}
		if res.Deleted {
			fmt.Fprintf(out, "Deleted:      %s\n", args[0])
		}
		printWarnings(out, res.Errors)
		return nil
	},
}

// statementBar lazily creates a progress bar once the statement total is known.
type statementBar struct {
	label string
	bar   *uiprogress.Bar
}

func newStatementBar(label string) *statementBar {
	uiprogress.Start()
	return &statementBar{label: label}
}

func (s *statementBar) update(done, total int) {
	if s.bar == nil {
		s.bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
		s.bar.PrependFunc(func(b *uiprogress.Bar) string {
			return s.label
		})
	}
	s.bar.Set(done)
}

func (s *statementBar) stop() {
	uiprogress.Stop()
}

func init() {
	RootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importKeep, "keep", false, "keep the dump file after a successful import")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
}
