package cmd

import (
	"fmt"
	"os"

	"db-sync/internal/preset"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initForce bool

type fileConfig struct {
	Databases []DBConfig      `yaml:"databases"`
	Storage   storageConfig   `yaml:"storage"`
	Site      siteConfig      `yaml:"site"`
	Tables    tablesConfig    `yaml:"tables"`
	Watch     watchConfig     `yaml:"watch"`
	Export    exportConfig    `yaml:"export"`
	Presets   []preset.Preset `yaml:"presets,omitempty"`
}

type storageConfig struct {
	Dir string `yaml:"dir"`
}

type siteConfig struct {
	URL         string `yaml:"url"`
	Environment string `yaml:"environment,omitempty"`
}

type tablesConfig struct {
	Prefix string `yaml:"prefix"`
}

type watchConfig struct {
	Interval string `yaml:"interval"`
}

type exportConfig struct {
	Compress bool `yaml:"compress"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Databases: []DBConfig{{
			Name:   "local",
			Driver: "mysql",
			DSN:    "user:password@tcp(127.0.0.1:3306)/wordpress",
			Active: true,
		}},
		Storage: storageConfig{Dir: "db-sync"},
		Site:    siteConfig{URL: "http://localhost"},
		Tables:  tablesConfig{Prefix: "wp_"},
		Watch:   watchConfig{Interval: "5s"},
	}
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a starter db-sync.yaml",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "db-sync.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		data, err := yaml.Marshal(defaultFileConfig())
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")
}
