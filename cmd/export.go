package cmd

import (
	"fmt"
	"strings"
	"time"

	"db-sync/internal/engine"
	"db-sync/internal/preset"
	"db-sync/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	exportPreset string
	exportTables []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the selected tables to a new dump file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, cleanup, err := openEngine(ctx, true)
		if err != nil {
			return err
		}
		defer cleanup()

		key := exportPreset
		if len(exportTables) > 0 && key == "" {
			key = preset.Custom
		}

		start := time.Now()

		// Progress bar, one step per table
		uiprogress.Start()
		var bar *uiprogress.Bar
		res, err := e.Export(ctx, engine.ExportRequest{
			Preset: key,
			Tables: exportTables,
			OnTable: func(done, total int, t *schema.Table) {
				if bar == nil {
					bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
					bar.PrependFunc(func(b *uiprogress.Bar) string {
						return "Exporting: "
					})
				}
				bar.Set(done)
			},
		})
		uiprogress.Stop()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "\n📦 %s\n", res.File.Name)
		fmt.Fprintf(out, "Preset:      %s\n", res.PresetName)
		fmt.Fprintf(out, "Environment: %s\n", res.Environment)
		fmt.Fprintf(out, "Tables:      %s\n", strings.Join(res.Tables, ", "))
		if len(res.Missing) > 0 {
			fmt.Fprintf(out, "Skipped:     %s (not found)\n", strings.Join(res.Missing, ", "))
		}
		fmt.Fprintf(out, "Rows:        %d\n", res.Stats.Rows)
		fmt.Fprintf(out, "Size:        %d bytes\n", res.File.Size)
		Logger.Info("export done", "elapsed", time.Since(start))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportPreset, "preset", "p", "", "preset key (default: last used, then development)")
	exportCmd.Flags().StringSliceVarP(&exportTables, "tables", "t", nil, "table names for the custom preset (comma-separated)")
	exportCmd.Flags().Bool("compress", false, "write a zstd-compressed .sql.zst dump")

	viper.BindPFlag("export.compress", exportCmd.Flags().Lookup("compress"))
}
