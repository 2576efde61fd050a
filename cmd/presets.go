package cmd

import (
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available table presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		presets, err := loadPresets()
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Key", "Name", "Description", "Tables"})
		table.SetAutoWrapText(false)
		for _, p := range presets.List() {
			table.Append([]string{p.Key, p.Name, p.Description, strings.Join(p.Tables, ", ")})
		}
		table.Render()
		return nil
	},
}

func init() {
	RootCmd.AddCommand(presetsCmd)
}
