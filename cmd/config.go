package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"db-sync/internal/dialect"
	"db-sync/internal/engine"
	"db-sync/internal/kvstore"
	"db-sync/internal/preset"
	"db-sync/internal/site"
	"db-sync/internal/source"
	"db-sync/internal/storage"

	"github.com/spf13/viper"
)

type DBConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	Active bool   `mapstructure:"active" yaml:"active"`
}

// GetActiveDBConfig returns the currently active database configuration.
func GetActiveDBConfig() (*DBConfig, error) {
	var configs []DBConfig

	if err := viper.UnmarshalKey("databases", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse databases config: %w", err)
	}

	var activeConfig *DBConfig
	count := 0

	for i := range configs {
		if configs[i].Active {
			activeConfig = &configs[i]
			count++
		}
	}

	if count == 0 {
		return nil, fmt.Errorf("no active database found in config (set active: true)")
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple active databases found (only one can be active)")
	}

	return activeConfig, nil
}

// resolveDatabase prefers --dsn/--driver (or database.*) over the databases list.
func resolveDatabase() (*DBConfig, error) {
	if dsn := viper.GetString("database.dsn"); dsn != "" {
		return &DBConfig{
			Name:   "default",
			Driver: viper.GetString("database.driver"),
			DSN:    dsn,
			Active: true,
		}, nil
	}
	cfg, err := GetActiveDBConfig()
	if err != nil {
		return nil, fmt.Errorf("could not determine database: use --dsn and --driver or a databases list: %w", err)
	}
	return cfg, nil
}

func loadPresets() (*preset.Catalogue, error) {
	var extra []preset.Preset
	if err := viper.UnmarshalKey("presets", &extra); err != nil {
		return nil, fmt.Errorf("failed to parse presets config: %w", err)
	}
	return preset.New(extra)
}

func statePath() string {
	if p := viper.GetString("state.path"); p != "" {
		return p
	}
	return filepath.Join(viper.GetString("storage.dir"), ".state.db")
}

func openDB(ctx context.Context) (*source.Source, func(), error) {
	config, err := resolveDatabase()
	if err != nil {
		return nil, nil, err
	}

	d, err := dialect.GetDialect(config.Driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(dialect.DriverName(config.Driver), config.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	if d.Name() == "MySQL" {
		var schemaName sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&schemaName); err != nil || !schemaName.Valid {
			db.Close()
			return nil, nil, fmt.Errorf("no database selected in DSN")
		}
		Logger.Debug("connected", "driver", config.Driver, "schema", schemaName.String)
	} else {
		Logger.Debug("connected", "driver", config.Driver, "name", config.Name)
	}

	return source.New(db, d, Logger), func() { db.Close() }, nil
}

// openEngine wires an engine from the current configuration. File-only
// commands pass needDB=false and get an engine without a data source.
func openEngine(ctx context.Context, needDB bool) (*engine.Engine, func(), error) {
	presets, err := loadPresets()
	if err != nil {
		return nil, nil, err
	}

	dir, err := storage.Open(viper.GetString("storage.dir"), Logger)
	if err != nil {
		return nil, nil, err
	}

	store, err := kvstore.OpenSQLite(ctx, statePath())
	if err != nil {
		return nil, nil, err
	}
	closers := []func(){func() { store.Close() }}

	var src *source.Source
	if needDB {
		var closeDB func()
		src, closeDB, err = openDB(ctx)
		if err != nil {
			store.Close()
			return nil, nil, err
		}
		closers = append(closers, closeDB)
	}

	cfg := engine.Config{
		Prefix: viper.GetString("tables.prefix"),
		Site: site.Site{
			URL:                 viper.GetString("site.url"),
			EnvironmentOverride: viper.GetString("site.environment"),
		},
		Compress: viper.GetBool("export.compress"),
	}
	e := engine.New(cfg, src, dir, store, presets, Logger)

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return e, cleanup, nil
}
