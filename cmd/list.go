package cmd

import (
	"fmt"
	"io"
	"strconv"

	"db-sync/internal/storage"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List dump and backup files, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		files, err := e.Files()
		if err != nil {
			return err
		}

		var dumps, backups []storage.File
		for _, f := range files {
			if f.Info.IsBackup {
				backups = append(backups, f)
			} else {
				dumps = append(dumps, f)
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Dumps (%d)\n", len(dumps))
		renderFiles(out, dumps)
		fmt.Fprintf(out, "\nBackups (%d)\n", len(backups))
		renderFiles(out, backups)
		return nil
	},
}

func renderFiles(out io.Writer, files []storage.File) {
	if len(files) == 0 {
		fmt.Fprintln(out, "  (none)")
		return
	}
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"File", "Date", "Time", "Preset", "Environment", "Size"})
	for _, f := range files {
		table.Append([]string{
			f.Name,
			f.Info.Date,
			f.Info.Time,
			f.Info.Preset,
			f.Info.Environment,
			strconv.FormatInt(f.Size, 10),
		})
	}
	table.Render()
}

func init() {
	RootCmd.AddCommand(listCmd)
}
