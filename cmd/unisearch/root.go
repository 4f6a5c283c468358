package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/unisearch/internal/config"
	"github.com/dshills/unisearch/internal/storage"
)

// app carries the state shared by every command
type app struct {
	configFile string
	debug      bool
	engine     string
	dsn        string

	config *config.Config
	logger *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "unisearch",
		Short: "Search several tables at once with one UNION query",
		Long: `unisearch searches the configured models of a MySQL, Postgres or SQLite
database with a single UNION query and returns one ordered, paginated list.

Sources and search defaults are read from unisearch.yaml (see --config);
every key can be overridden with a UNISEARCH_ environment variable.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("unisearch %s\nBuild Time: %s\nBuild Mode: %s\nSQLite Driver: %s\n",
		version, buildTime, storage.BuildMode, storage.SQLiteDriverName))

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file path (default: ./unisearch.yaml or ~/.unisearch/unisearch.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging, including compiled SQL")
	flags.StringVar(&a.engine, "engine", "", "database engine: mysql, postgres or sqlite")
	flags.StringVar(&a.dsn, "dsn", "", "database connection string")

	cmd.AddCommand(
		newSearchCommand(a),
		newCountCommand(a),
		newTermsCommand(a),
		newSeedCommand(a),
		newMigrateCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// init loads the configuration and builds the logger
func (a *app) init() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.engine != "" {
		cfg.Database.Engine = a.engine
	}
	if a.dsn != "" {
		cfg.Database.DSN = a.dsn
	}

	logger, err := newLogger(a.debug, cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	a.config = cfg
	a.logger = logger
	return nil
}

// open connects to the configured database
func (a *app) open(ctx context.Context) (*storage.Store, error) {
	store, err := storage.Open(ctx, a.config.StoreOptions())
	if err != nil {
		return nil, err
	}
	a.logger.Debug("connected",
		zap.String("engine", store.Engine()),
		zap.String("build_mode", storage.BuildMode))
	return store, nil
}

// newLogger returns a development logger when debug is set, otherwise a
// production logger at the configured level. Both write to stderr.
func newLogger(debug bool, cfg *config.Logger) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}

	zcfg := zap.NewProductionConfig()
	if cfg != nil && cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg != nil && cfg.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zcfg.Build()
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "unisearch version %s\n", version)
		},
	}
}
