package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	Logger  = slog.New(slog.DiscardHandler)
)

var RootCmd = &cobra.Command{
	Use:   "db-sync",
	Short: "Export, import and restore database tables as SQL dumps",
	Long: `
  ____  ____     ______   ___   _  ____
 |  _ \| __ )   / ___\ \ / / \ | |/ ___|
 | | | |  _ \   \___ \\ V /|  \| | |
 | |_| | |_) |   ___) || | | |\  | |___
 |____/|____/   |____/ |_| |_| \_|\____|

DB SYNC - Portable SQL dumps with backup-before-import
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		Logger = newLogger(verbose)
		if used := viper.ConfigFileUsed(); used != "" {
			Logger.Debug("using config file", "path", used)
		}
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Define flags
	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./db-sync.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.String("dsn", "", "Database Source Name (DSN)")
	flags.String("driver", "", "database driver: mysql or sqlite")
	flags.String("dir", "", "directory holding dump files")
	flags.String("url", "", "site URL of this database (used for environment and URL rewriting)")
	flags.String("prefix", "", "table prefix stripped from display names")

	// Bind flags to viper
	viper.BindPFlag("database.dsn", flags.Lookup("dsn"))
	viper.BindPFlag("database.driver", flags.Lookup("driver"))
	viper.BindPFlag("storage.dir", flags.Lookup("dir"))
	viper.BindPFlag("site.url", flags.Lookup("url"))
	viper.BindPFlag("tables.prefix", flags.Lookup("prefix"))

	// Defaults (fallback if no config/flag)
	viper.SetDefault("database.driver", "mysql")
	viper.SetDefault("storage.dir", "db-sync")
	viper.SetDefault("tables.prefix", "wp_")
	viper.SetDefault("watch.interval", "5s")
	viper.SetDefault("export.compress", false)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("db-sync")
		viper.SetConfigType("yaml")
	}

	// DBSYNC_DATABASE_DSN, DBSYNC_STORAGE_DIR, ...
	viper.SetEnvPrefix("DBSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Warning: could not read config:", err)
		}
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
